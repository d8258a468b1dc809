package analysis

import (
	"context"
	"sync"

	"cast_check/share/parallel"

	"github.com/pkg/errors"
)

// ComputeAll scores independent fights concurrently. Reports keep the input
// order. progress, when set, is called after each finished fight, one call at
// a time and with done increasing.
func ComputeAll(ctx context.Context, inputs []*Input, workers int, progress func(done, total int)) ([]*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	reports := make([]*Report, len(inputs))

	pp := parallel.New(workers)
	pp.Reset(ctx)
	defer pp.Stop()

	var (
		workedLock sync.Mutex
		worked     int
	)
	for i := range inputs {
		i := i
		pp.Add(func(ctx context.Context) error {
			if ctx.Err() != nil {
				return nil
			}

			r, err := Compute(inputs[i])
			if err != nil {
				return errors.Wrapf(err, "fight %d", i)
			}
			reports[i] = r

			workedLock.Lock()
			worked++
			if progress != nil {
				progress(worked, len(inputs))
			}
			workedLock.Unlock()
			return nil
		})
	}

	if err := pp.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	return reports, nil
}
