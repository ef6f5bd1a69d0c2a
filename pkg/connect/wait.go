package connect

import (
	"context"
	"errors"
	"sync"
)

// Branch is one named connect operation to aggregate.
type Branch struct {
	// Name is the branch name used in failure reports.
	Name string

	// Connect performs the branch's connect. It must honour ctx.
	Connect func(ctx context.Context) error
}

// WaitForConnection runs all branches concurrently and waits for every one
// to finish, in both the success and the failure path.
//
// Outcomes, in order of precedence:
//
//   - A branch failing with anything other than *NotConnectedError or a
//     plain context error is fatal: the remaining branches are cancelled,
//     awaited, and the first such error (in branch order) is returned
//     as-is. Siblings that report the cancellation do not mask it.
//   - If ctx is cancelled, every still-running branch is cancelled and
//     awaited; branch failures are then aggregated as below, except that
//     plain context.Canceled/DeadlineExceeded results contribute nothing.
//     If no branch failed, ctx.Err() is returned.
//   - Branches failing with *NotConnectedError are combined into one
//     *NotConnectedError enumerating exactly the failing branches, in
//     branch order. Nested composite failures stay nested.
//   - Total success returns nil.
func WaitForConnection(ctx context.Context, branches ...Branch) error {
	if len(branches) == 0 {
		return ctx.Err()
	}

	branchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]error, len(branches))
	var wg sync.WaitGroup
	for i, b := range branches {
		wg.Add(1)
		go func(i int, b Branch) {
			defer wg.Done()
			err := b.Connect(branchCtx)
			results[i] = err
			if err != nil && !isStructured(err) && !isCancellation(err) {
				// Fatal failure: stop the siblings promptly.
				cancel()
			}
		}(i, b)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	cancelled := false
	select {
	case <-ctx.Done():
		cancelled = true
		cancel()
		<-done
	case <-done:
		cancelled = ctx.Err() != nil
	}

	if !cancelled {
		// Siblings cancelled by a fatal branch report plain context errors;
		// the fatal error itself is the one to surface.
		for _, err := range results {
			if err != nil && !isStructured(err) && !isCancellation(err) {
				return err
			}
		}
	}

	var failed []BranchFailure
	for i, err := range results {
		if err == nil {
			continue
		}
		if cancelled && isCancellation(err) && !isStructured(err) {
			continue
		}
		failed = append(failed, BranchFailure{Name: branches[i].Name, Err: err})
	}

	if len(failed) > 0 {
		return &NotConnectedError{Branches: failed}
	}
	if cancelled {
		return ctx.Err()
	}
	return nil
}

// isStructured reports whether err is (or wraps) a structured connection
// failure.
func isStructured(err error) bool {
	var nc *NotConnectedError
	return errors.As(err, &nc)
}

// isCancellation reports whether err is a plain context cancellation.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
