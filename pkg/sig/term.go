package sig

import (
	"context"
	"os/signal"
	"syscall"
)

// TermContext returns a context canceled on SIGTERM or SIGINT.
func TermContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
}
