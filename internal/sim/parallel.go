package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/pidlab/internal/process"
)

// SimulateAll runs one simulation per gain set concurrently. Results are
// returned in input order; the first error cancels the remaining runs.
func SimulateAll(ctx context.Context, m process.Model, gains []process.Gains, cfg Config) ([]process.Trace, error) {
	traces := make([]process.Trace, len(gains))

	g, ctx := errgroup.WithContext(ctx)
	for i := range gains {
		g.Go(func() error {
			tr, err := SimulateContext(ctx, m, gains[i], cfg)
			if err != nil {
				return err
			}
			traces[i] = tr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return traces, nil
}
