package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/docker/go-units"

	"github.com/meigma/ustar"
)

func (r *runner) extract(ctx context.Context) error {
	a, err := r.readArchive(ctx)
	if err != nil {
		return err
	}

	dest := r.cfg.Dir
	if dest == "" {
		dest = "."
	}
	var total uint64
	for _, e := range a.All() {
		r.log.Debug().Str("name", e.Header.Name).Str("type", e.Header.Type.String()).Msg("extract")
		total += uint64(len(e.Content()))
	}

	err = a.Extract(dest,
		ustar.ExtractWithPreserveMode(true),
		ustar.ExtractWithPreserveTimes(true),
		ustar.ExtractWithLogger(r.libraryLogger()),
	)
	if errors.Is(err, ustar.ErrUnsafePath) {
		return fmt.Errorf("extract to %s: %w", dest, err)
	}
	if err != nil {
		return fmt.Errorf("%w: extract to %s: %w", ErrIO, dest, err)
	}
	r.log.Info().
		Str("dest", dest).
		Int("entries", a.Len()).
		Str("size", units.HumanSize(float64(total))).
		Msg("extracted")
	return nil
}
