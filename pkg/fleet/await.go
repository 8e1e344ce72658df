package fleet

import (
	"context"

	"armada/pkg/model"
	"armada/pkg/runtime"
)

// AwaitAll blocks until every handle resolves and returns the results
// in the same order as the input handles, regardless of completion
// order. The first failure observed is returned immediately: handles
// that have not resolved by then are left detached, their remote work
// running to completion in the background. Nothing is cancelled.
func AwaitAll(ctx context.Context, handles []runtime.Handle) ([]model.Result, error) {
	if len(handles) == 0 {
		return nil, nil
	}

	type outcome struct {
		idx int
		res model.Result
		err error
	}

	// Buffered so detached waiters never block after a fail-fast return.
	done := make(chan outcome, len(handles))
	for i, h := range handles {
		go func(idx int, h runtime.Handle) {
			res, err := h.Wait(ctx)
			done <- outcome{idx: idx, res: res, err: err}
		}(i, h)
	}

	results := make([]model.Result, len(handles))
	for range handles {
		o := <-done
		if o.err != nil {
			return nil, o.err
		}
		results[o.idx] = o.res
	}
	return results, nil
}
