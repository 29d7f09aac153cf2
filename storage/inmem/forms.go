package inmem

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/trezcool/edupay/core/form"
)

// FormStore keeps open form sessions in memory. A session expires after ttl without access;
// expired and deleted sessions are closed.
type FormStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

var _ form.Store = (*FormStore)(nil)

func NewFormStore(ttl time.Duration) *FormStore {
	cleanup := ttl / 2
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	c := cache.New(ttl, cleanup)
	c.OnEvicted(func(_ string, v interface{}) {
		if sess, ok := v.(*form.Session); ok {
			sess.Close()
		}
	})
	return &FormStore{cache: c}
}

func (s *FormStore) Add(sess *form.Session) {
	s.cache.SetDefault(sess.ID, sess)
}

// Get returns a live session and extends its lifetime.
func (s *FormStore) Get(id string) (*form.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	sess := v.(*form.Session)
	s.cache.SetDefault(id, sess)
	return sess, true
}

func (s *FormStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache.Get(id); !ok {
		return false
	}
	s.cache.Delete(id)
	return true
}

func (s *FormStore) Count() int {
	return s.cache.ItemCount()
}

// Flush closes every session.
func (s *FormStore) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.cache.Items() {
		s.cache.Delete(id)
	}
}
