package cache

import (
	"fmt"
	"hash"
	"hash/fnv"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

type cacheKey struct {
	h64  uint64
	h64a uint64
}

type entry struct {
	data    []byte
	expires time.Time
}

// Storage memoizes encoded values for ttl.
type Storage struct {
	ttl time.Duration
	now func() time.Time

	lock    sync.RWMutex
	entries map[cacheKey]entry

	savingLock sync.Mutex
	saving     map[cacheKey]struct{}
}

func NewStorage(ttl time.Duration) *Storage {
	return &Storage{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[cacheKey]entry, 32),
		saving:  make(map[cacheKey]struct{}, 8),
	}
}

// NewHash returns a hash already fed with the formatted key.
func NewHash(format string, args ...interface{}) hash.Hash {
	h := fnv.New128a()
	fmt.Fprintf(h, format, args...)
	return h
}

func keyOf(h hash.Hash) cacheKey {
	var k cacheKey
	for i, b := range h.Sum(nil) {
		if i < 8 {
			k.h64 = k.h64<<8 | uint64(b)
		} else {
			k.h64a = k.h64a<<8 | uint64(b)
		}
	}
	return k
}

func (s *Storage) lockSave(k cacheKey) bool {
	s.savingLock.Lock()
	defer s.savingLock.Unlock()

	_, ok := s.saving[k]
	if !ok {
		s.saving[k] = struct{}{}
	}
	return !ok
}
func (s *Storage) unlockSave(k cacheKey) {
	s.savingLock.Lock()
	defer s.savingLock.Unlock()

	delete(s.saving, k)
}

// Save stores v under the sum of h. It returns false when v could not be
// encoded or the same key is being saved concurrently.
func (s *Storage) Save(h hash.Hash, v interface{}) bool {
	if s.ttl <= 0 {
		return false
	}

	k := keyOf(h)
	if !s.lockSave(k) {
		return false
	}
	defer s.unlockSave(k)

	data, err := jsoniter.Marshal(v)
	if err != nil {
		logrus.Warnf("cache: %v", err)
		sentry.CaptureException(err)
		return false
	}

	s.lock.Lock()
	s.entries[k] = entry{
		data:    data,
		expires: s.now().Add(s.ttl),
	}
	s.lock.Unlock()

	return true
}

// Load decodes the value stored under the sum of h into v.
func (s *Storage) Load(h hash.Hash, v interface{}) bool {
	k := keyOf(h)

	s.lock.RLock()
	e, ok := s.entries[k]
	s.lock.RUnlock()
	if !ok {
		return false
	}

	if !s.now().Before(e.expires) {
		s.lock.Lock()
		if cur, ok := s.entries[k]; ok && !s.now().Before(cur.expires) {
			delete(s.entries, k)
		}
		s.lock.Unlock()
		return false
	}

	if err := jsoniter.Unmarshal(e.data, v); err != nil {
		logrus.Warnf("cache: %v", err)
		sentry.CaptureException(err)
		return false
	}
	return true
}

// Purge drops expired entries and returns how many are left.
func (s *Storage) Purge() int {
	now := s.now()

	s.lock.Lock()
	defer s.lock.Unlock()

	for k, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, k)
		}
	}
	return len(s.entries)
}

func (s *Storage) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.entries)
}
