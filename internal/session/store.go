// Package session keeps per-user calculator forms in memory for the lifetime
// of a page session.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	zakat "github.com/IRedDragonICY/zakatcalc"
	"github.com/IRedDragonICY/zakatcalc/internal/apperrors"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

// Snapshot is the state of one session after the latest event.
type Snapshot struct {
	ID     string
	Form   zakat.Form
	Result zakat.Result
}

// entry guards one form. The cache owns expiry; the mutex only orders
// events within a session.
type entry struct {
	mu   sync.Mutex
	form zakat.Form
}

// Store is an in-memory session registry backed by a TTL cache. Every read or
// event touches the session, so it expires after ttl of inactivity.
type Store struct {
	catalog  *zakat.Catalog
	sessions *ttlcache.Cache[string, *entry]
}

// NewStore creates a store whose sessions expire after ttl of inactivity.
func NewStore(catalog *zakat.Catalog, ttl time.Duration) *Store {
	return &Store{
		catalog:  catalog,
		sessions: ttlcache.New[string, *entry](ttlcache.WithTTL[string, *entry](ttl)),
	}
}

// Catalog returns the currency catalog the store prices forms with.
func (s *Store) Catalog() *zakat.Catalog {
	return s.catalog
}

// Create starts a session priced in the given currency.
func (s *Store) Create(code zakat.Code) Snapshot {
	form := zakat.NewForm(s.catalog.Lookup(code))
	id := uuid.NewString()
	s.sessions.Set(id, &entry{form: form}, ttlcache.DefaultTTL)
	return Snapshot{ID: id, Form: form, Result: zakat.Calculate(form)}
}

// Get returns the current snapshot of a live session.
func (s *Store) Get(id string) (Snapshot, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{ID: id, Form: e.form, Result: zakat.Calculate(e.form)}, nil
}

// Dispatch applies events to a session in order. Either every event applies
// or the form is left as it was. Library errors are wrapped with apperrors
// sentinels so callers can map them to responses.
func (s *Store) Dispatch(id string, events ...zakat.Event) (Snapshot, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	form := e.form
	for _, ev := range events {
		next, err := ev.Apply(form, s.catalog)
		if err != nil {
			return Snapshot{ID: id, Form: e.form, Result: zakat.Calculate(e.form)}, classify(err)
		}
		form = next
	}
	e.form = form
	return Snapshot{ID: id, Form: form, Result: zakat.Calculate(form)}, nil
}

// Delete ends a session.
func (s *Store) Delete(id string) error {
	if _, ok := s.sessions.GetAndDelete(id); !ok {
		return fmt.Errorf("session %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// Len returns the number of sessions currently held, including expired ones
// the cleanup loop has not removed yet.
func (s *Store) Len() int {
	return s.sessions.Len()
}

// OnExpire registers fn to be called with the id of every session removed
// for inactivity. The returned func unregisters it.
func (s *Store) OnExpire(fn func(id string)) func() {
	return s.sessions.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *entry]) {
		if reason == ttlcache.EvictionReasonExpired {
			fn(item.Key())
		}
	})
}

// Run removes expired sessions as they lapse and blocks until ctx is done.
func (s *Store) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		s.sessions.Stop()
	}()
	s.sessions.Start()
}

func (s *Store) lookup(id string) (*entry, error) {
	item := s.sessions.Get(id)
	if item == nil {
		return nil, fmt.Errorf("session %s: %w", id, apperrors.ErrNotFound)
	}
	return item.Value(), nil
}

func classify(err error) error {
	if errors.Is(err, zakat.ErrItemIndex) {
		return fmt.Errorf("%w: %w", apperrors.ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
}
