package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Repository keeps live sessions in memory. Nothing survives a restart.
type Repository interface {
	Save(ctx context.Context, o *Orchestrator) error
	GetByID(ctx context.Context, id uuid.UUID) (*Orchestrator, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Touch renews the session's idle timer without reading it.
	Touch(ctx context.Context, id uuid.UUID) error
	Len() int
}

type memoryRepo struct {
	sessions *expirable.LRU[uuid.UUID, *Orchestrator]
}

// NewRepository bounds the number of live sessions and drops those idle for
// longer than ttl. Dropped sessions are closed so their timers stop.
func NewRepository(maxSessions int, ttl time.Duration) Repository {
	if maxSessions <= 0 {
		maxSessions = 1
	}
	onEvict := func(_ uuid.UUID, o *Orchestrator) {
		o.Close()
	}
	return &memoryRepo{
		sessions: expirable.NewLRU[uuid.UUID, *Orchestrator](maxSessions, onEvict, ttl),
	}
}

func (r *memoryRepo) Save(_ context.Context, o *Orchestrator) error {
	r.sessions.Add(o.ID(), o)
	return nil
}

// GetByID also renews the session's idle timer.
func (r *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*Orchestrator, error) {
	o, ok := r.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	r.sessions.Add(id, o)
	return o, nil
}

func (r *memoryRepo) Touch(ctx context.Context, id uuid.UUID) error {
	_, err := r.GetByID(ctx, id)
	return err
}

func (r *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if !r.sessions.Remove(id) {
		return ErrSessionNotFound
	}
	return nil
}

func (r *memoryRepo) Len() int {
	return r.sessions.Len()
}
