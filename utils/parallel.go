package utils

import (
	"context"
	"math"
	"runtime"
	"sync"

	"go.uber.org/multierr"
	"go.viam.com/utils"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
}

// RangeWorkFunc processes the half-open index range [from, to) and returns any error
// encountered. Implementations must be safe to run concurrently with each other.
type RangeWorkFunc func(from, to int) error

// GroupWorkParallel splits totalSize indices into contiguous ranges, one per worker,
// and runs work on each range concurrently. Errors from all ranges are combined. When
// ParallelFactor is 1 or the work is smaller than one item per worker, the work runs
// sequentially on the calling goroutine.
func GroupWorkParallel(ctx context.Context, totalSize int, work RangeWorkFunc) error {
	if totalSize <= 0 {
		return nil
	}
	numGroups := ParallelFactor
	if numGroups > totalSize {
		numGroups = totalSize
	}
	if numGroups == 1 {
		return work(0, totalSize)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	groupSize := int(math.Ceil(float64(totalSize) / float64(numGroups)))
	errs := make([]error, numGroups)
	var wait sync.WaitGroup
	for groupNum := 0; groupNum < numGroups; groupNum++ {
		from := groupSize * groupNum
		to := from + groupSize
		if from >= totalSize {
			break
		}
		if to > totalSize {
			to = totalSize
		}
		wait.Add(1)
		groupIdx, fromCopy, toCopy := groupNum, from, to
		utils.PanicCapturingGo(func() {
			defer wait.Done()
			errs[groupIdx] = work(fromCopy, toCopy)
		})
	}
	wait.Wait()
	return multierr.Combine(errs...)
}
