package dispatch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"pressroom/internal/core"
)

// DefaultBatchConcurrency bounds AssignBatch when the caller passes zero.
const DefaultBatchConcurrency = 8

// AssignBatch assigns templates to independent requests with at most
// concurrency in flight. Results are in input order.
func (d *Dispatcher) AssignBatch(ctx context.Context, reqs []Request, concurrency int) []core.TemplateAssignment {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	results := make([]core.TemplateAssignment, len(reqs))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = d.Assign(ctx, req)
			return nil
		})
	}
	_ = g.Wait() // Assign never fails

	return results
}
