package interview

import (
	"context"
	"fmt"
)

type workerRun func(context.Context) error

func panicSafeNamedWorker(name string, run func(context.Context) error) workerRun {
	return func(ctx context.Context) (err error) {
		defer func() {
			if recovered := recover(); recovered != nil {
				err = fmt.Errorf("%s worker panicked: %v", name, recovered)
			}
		}()

		if err = run(ctx); err != nil {
			return fmt.Errorf("%s worker failed: %w", name, err)
		}

		return nil
	}
}

// closeClient closes client with whichever Close signature it implements.
func closeClient(ctx context.Context, client any) error {
	switch c := client.(type) {
	case interface{ Close(context.Context) error }:
		return c.Close(ctx)
	case interface{ Close(context.Context) }:
		c.Close(ctx)
	case interface{ Close() error }:
		return c.Close()
	case interface{ Close() }:
		c.Close()
	}
	return nil
}
