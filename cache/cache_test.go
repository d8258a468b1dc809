package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type value struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func newTestStorage(ttl time.Duration) (*Storage, *time.Time) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStorage(ttl)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestSaveLoad(t *testing.T) {
	s, _ := newTestStorage(time.Minute)

	require.True(t, s.Save(NewHash("fight_%d", 1), value{Name: "a", Score: 0.5}))

	var v value
	require.True(t, s.Load(NewHash("fight_%d", 1), &v))
	assert.Equal(t, value{Name: "a", Score: 0.5}, v)

	assert.False(t, s.Load(NewHash("fight_%d", 2), &v))
}

func TestExpiry(t *testing.T) {
	s, now := newTestStorage(time.Minute)

	s.Save(NewHash("a"), value{Name: "a"})
	*now = now.Add(30 * time.Second)
	s.Save(NewHash("b"), value{Name: "b"})

	*now = now.Add(30 * time.Second)
	var v value
	assert.False(t, s.Load(NewHash("a"), &v))
	assert.Equal(t, 1, s.Len())

	assert.True(t, s.Load(NewHash("b"), &v))
	assert.Equal(t, "b", v.Name)

	*now = now.Add(time.Minute)
	assert.Equal(t, 0, s.Purge())
}

func TestDisabled(t *testing.T) {
	s, _ := newTestStorage(0)

	assert.False(t, s.Save(NewHash("a"), value{}))
	assert.Equal(t, 0, s.Len())
}

func TestSaveUnencodable(t *testing.T) {
	s, _ := newTestStorage(time.Minute)

	assert.False(t, s.Save(NewHash("a"), make(chan int)))

	var v value
	assert.False(t, s.Load(NewHash("a"), &v))
}
