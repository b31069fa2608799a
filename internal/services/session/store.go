package session

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"findash/internal/clock"
	"findash/internal/models"
)

// DefaultTTL is how long an idle session is kept
const DefaultTTL = 30 * time.Minute

// Store keeps live sessions in memory and evicts idle ones
type Store struct {
	cache  *cache.Cache
	now    clock.Now
	source func() *models.FinancialRecord
	log    *logrus.Logger
}

// NewStore creates a Store. source yields the record new sessions start with.
func NewStore(ttl time.Duration, source func() *models.FinancialRecord, now clock.Now, log *logrus.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if source == nil {
		source = models.MockRecord
	}
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	c := cache.New(ttl, ttl/2)
	c.OnEvicted(func(id string, _ interface{}) {
		log.WithField("session_id", id).Debug("session expired")
	})

	return &Store{cache: c, now: now, source: source, log: log}
}

// Create starts a new session
func (s *Store) Create() *Session {
	sess := New(s.source(), s.now)
	s.cache.SetDefault(sess.ID(), sess)
	s.log.WithField("session_id", sess.ID()).Info("session created")
	return sess
}

// Get looks a session up and extends its lifetime
func (s *Store) Get(id string) (*Session, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess := v.(*Session)
	s.cache.SetDefault(id, sess)
	return sess, nil
}

// Delete ends a session
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

// Each calls fn for every live session
func (s *Store) Each(fn func(*Session)) {
	for _, item := range s.cache.Items() {
		if sess, ok := item.Object.(*Session); ok {
			fn(sess)
		}
	}
}

// Count returns the number of live sessions
func (s *Store) Count() int {
	return s.cache.ItemCount()
}
