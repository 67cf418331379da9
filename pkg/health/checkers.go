package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck fails when more than threshold goroutines are running,
// which usually means requests are piling up behind a stuck store.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", n, threshold)
		}
		return nil
	}
}

// PingCheck adapts a store ping to a CheckFunc, naming the store in errors.
func PingCheck(store string, ping func(context.Context) error) CheckFunc {
	return func(ctx context.Context) error {
		if err := ping(ctx); err != nil {
			return errors.Wrapf(err, "ping %s", store)
		}
		return nil
	}
}
