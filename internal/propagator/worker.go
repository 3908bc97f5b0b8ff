package propagator

import "golang.org/x/sync/errgroup"

// rowBand is a half-open range of padded rows handled by one worker.
type rowBand struct{ start, end int }

// splitRows divides rows [first, last) into at most workers contiguous bands
// of near equal size.
func splitRows(first, last, workers int) []rowBand {
	total := last - first
	if total <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > total {
		workers = total
	}
	rowsPer := (total + workers - 1) / workers
	bands := make([]rowBand, 0, workers)
	for start := first; start < last; start += rowsPer {
		bands = append(bands, rowBand{start: start, end: min(start+rowsPer, last)})
	}
	return bands
}

// cpuKernel runs the stencil on the host, optionally sharding rows across
// goroutines. Workers only write their own rows of current and read prior
// and prior-prior, so no locking is needed; the caller rotates generations
// after every band has finished.
type cpuKernel struct{}

func (cpuKernel) step(d *Damped) error {
	w, n := d.current.Width(), d.current.Length()
	if w < 3 || n < 3 {
		return nil
	}
	if d.workers <= 1 {
		d.stencilRows(1, w-1)
		return nil
	}
	var g errgroup.Group
	for _, band := range splitRows(1, w-1, d.workers) {
		g.Go(func() error {
			d.stencilRows(band.start, band.end)
			return nil
		})
	}
	return g.Wait()
}
