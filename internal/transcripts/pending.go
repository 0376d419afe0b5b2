package transcripts

import "context"

// Pending is the handle for work started in the background.
type Pending[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func startPending[T any](fn func() (T, error)) *Pending[T] {
	p := &Pending[T]{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.value, p.err = fn()
	}()
	return p
}

// Done is closed once the result is available.
func (p *Pending[T]) Done() <-chan struct{} { return p.done }

// Wait blocks until the work finishes or ctx ends. Giving up on ctx does not
// stop the background work.
func (p *Pending[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
