package ustar

import "iter"

// BlockSize is the size of every archive block, header or data.
const BlockSize = 512

// terminatorBlocks is the number of consecutive zero blocks that end an archive.
const terminatorBlocks = 2

// Blocks yields each complete block of buf with its byte offset.
// A trailing partial block is ignored.
func Blocks(buf []byte) iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		for off := 0; off+BlockSize <= len(buf); off += BlockSize {
			if !yield(off, buf[off:off+BlockSize:off+BlockSize]) {
				return
			}
		}
	}
}

// IsZeroBlock reports whether every byte of block is zero.
func IsZeroBlock(block []byte) bool {
	for _, b := range block {
		if b != 0 {
			return false
		}
	}
	return true
}

// blockCount returns the number of data blocks that hold size bytes.
func blockCount(size uint64) uint64 {
	return size/BlockSize + min(size%BlockSize, 1)
}

// scanState is the position of a scanner between entries.
type scanState uint8

const (
	// stateScanning expects a header or the first terminator block.
	stateScanning scanState = iota
	// stateSkipping is inside a run of zero blocks shorter than the terminator.
	stateSkipping
	// stateTerminated has seen the terminator; no further blocks are read.
	stateTerminated
)

// scanner walks the header positions of an archive buffer.
//
// Zero blocks at header positions are counted; two in a row terminate the
// scan. A single zero block followed by a header is padding and resets the
// count. Data blocks are consumed with skip and never inspected, so entry
// content may itself contain zero blocks.
type scanner struct {
	buf   []byte
	end   int // last complete block boundary
	off   int
	zeros int
	state scanState
}

func newScanner(buf []byte) *scanner {
	return &scanner{
		buf: buf,
		end: len(buf) - len(buf)%BlockSize,
	}
}

// next returns the next header block and its offset. ok is false once the
// terminator has been seen or the buffer is exhausted.
func (s *scanner) next() (block []byte, offset int, ok bool) {
	for s.state != stateTerminated && s.off < s.end {
		block = s.buf[s.off : s.off+BlockSize : s.off+BlockSize]
		offset = s.off
		s.off += BlockSize

		if IsZeroBlock(block) {
			s.zeros++
			s.state = stateSkipping
			if s.zeros >= terminatorBlocks {
				s.state = stateTerminated
			}
			continue
		}

		s.zeros = 0
		s.state = stateScanning
		return block, offset, true
	}
	return nil, 0, false
}

// skip consumes up to n data blocks and returns how many bytes were
// available, which is less than n*BlockSize only when the buffer ends early.
func (s *scanner) skip(n uint64) int {
	avail := uint64((s.end - s.off) / BlockSize) //nolint:gosec // end >= off
	if n > avail {
		n = avail
	}
	taken := int(n) * BlockSize //nolint:gosec // bounded by buffer length
	s.off += taken
	return taken
}

// offset returns the offset of the next unread block.
func (s *scanner) offset() int {
	return s.off
}

// terminated reports whether the terminator was seen.
func (s *scanner) terminated() bool {
	return s.state == stateTerminated
}
