package signal

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestWithInterruptCancelsOnSignal(t *testing.T) {
	ctx, cancel := WithInterrupt(context.Background())
	defer cancel()

	if err := syscall.Kill(os.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("kill: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled after SIGTERM")
	}
}

func TestWithInterruptFollowsParent(t *testing.T) {
	parent, stop := context.WithCancel(context.Background())
	ctx, cancel := WithInterrupt(parent)
	defer cancel()

	stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled with parent")
	}
}

func TestNotifyContextCancel(t *testing.T) {
	ctx, cancel := NotifyContext()
	cancel()
	if ctx.Err() == nil {
		t.Error("expected cancelled context")
	}
}
