package tasks

import (
	"context"

	"github.com/google/uuid"
)

// Pending is the completion signal of an operation started with Go
type Pending struct {
	ID   uuid.UUID
	Name string

	done chan struct{}
	err  error
}

// Done is closed when the operation has finished
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Err returns the operation's error. Only meaningful after Done is closed.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the operation finishes or ctx ends
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Go runs op in the background and returns its completion signal. Callers
// may wait on it or drop it; failures are logged either way.
func (s *Service) Go(ctx context.Context, name string, op func(ctx context.Context) error) *Pending {
	p := &Pending{
		ID:   uuid.New(),
		Name: name,
		done: make(chan struct{}),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(p.done)

		p.err = op(ctx)
		if p.err != nil {
			s.log.Error("operation failed", "op", name, "id", p.ID, "err", p.err)
			return
		}
		s.log.Debug("operation finished", "op", name, "id", p.ID)
	}()

	return p
}

// Wait blocks until every operation started with Go has finished
func (s *Service) Wait() {
	s.wg.Wait()
}
