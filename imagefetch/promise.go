package imagefetch

import (
	"context"
	"time"
)

// DefaultTimeout bounds a single image fetch when no timeout is given.
const DefaultTimeout = 5 * time.Second

// Image is a fetched and header-decoded image.
type Image struct {
	Data []byte
	Dimensions
}

type imgPlusErr struct {
	img Image
	err error
}

// Promise is the pending result of Start.
type Promise struct {
	ch     chan imgPlusErr
	done   bool
	result imgPlusErr
}

// Start fetches src in a new goroutine. The fetch is bounded by timeout
// (DefaultTimeout when <= 0) and by ctx.
func Start(ctx context.Context, f Fetcher, src string, timeout time.Duration) *Promise {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ch := make(chan imgPlusErr, 1)
	go func() {
		defer close(ch)
		fctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		result := imgPlusErr{}
		data, err := f.Fetch(fctx, src)
		if err != nil {
			result.err = err
			ch <- result
			return
		}
		dim, err := DecodeDimensions(data)
		if err != nil {
			result.err = err
			ch <- result
			return
		}
		result.img = Image{Data: data, Dimensions: dim}
		ch <- result
	}()
	return &Promise{ch: ch}
}

// Await blocks until the fetch finishes or ctx is done. A Promise is owned by
// one goroutine; repeated calls return the first result.
func (p *Promise) Await(ctx context.Context) (Image, error) {
	if p.done {
		return p.result.img, p.result.err
	}
	select {
	case <-ctx.Done():
		return Image{}, ctx.Err()
	case r := <-p.ch:
		p.done = true
		p.result = r
		return r.img, r.err
	}
}
