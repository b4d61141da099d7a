package pipeline

import "golang.org/x/sync/errgroup"

// forEach calls fn(i) for i in [0, n) with at most workers calls in flight
// and returns the first error. Callers write results into slots indexed by i.
func forEach(workers, n int, fn func(i int) error) error {
	if workers <= 1 {
		for i := range n {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range n {
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}
