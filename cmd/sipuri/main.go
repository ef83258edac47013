// Command sipuri parses, renders, compares and resolves SIP addresses.
//
//	sipuri render '"Alice" <sip:alice@example.com;transport=tcp>'
//	sipuri compare sip:alice@EXAMPLE.com sip:alice@example.com
//	sipuri resolve --nameserver 192.0.2.53 sip:example.com
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, errNotEqual) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	return newApp(os.Stdout).Run(ctx, os.Args)
}
