// Package signal ties command and server lifetimes to SIGINT/SIGTERM.
package signal

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	clog "github.com/allencass/aistudio/pkg/log"
)

// WithInterrupt returns a context cancelled on the first SIGINT or
// SIGTERM. A second signal is left to the default handler, so a stuck
// shutdown can still be killed with another Ctrl-C.
func WithInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			clog.Info("interrupt received, stopping", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// NotifyContext is WithInterrupt on a background context.
func NotifyContext() (context.Context, context.CancelFunc) {
	return WithInterrupt(context.Background())
}
