// Command ustar creates, lists, and extracts USTAR archives.
//
// Usage:
//
//	ustar -cf out.tar dir file.txt
//	ustar -tvf out.tar
//	ustar -xf out.tar -C dest
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/meigma/ustar/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.Run(ctx, os.Args[1:], cli.Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
	stop()
	if err != nil {
		code := cli.ExitCode(err)
		fmt.Fprintf(os.Stderr, "ustar: %v\n", err)
		if code == 2 {
			fmt.Fprintln(os.Stderr, "Try 'ustar --help' for more information.")
		}
		os.Exit(code)
	}
}
