package agent

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCache_PutGet(t *testing.T) {
	c := NewCache()
	id := uuid.New()

	_, ok := c.Get(id)
	assert.False(t, ok)

	c.Put(id, "hunter2")
	p, ok := c.Get(id)
	assert.True(t, ok)
	assert.Equal(t, "hunter2", p.String())
}

func TestCache_PutReplacesAndScrubsOld(t *testing.T) {
	c := NewCache()
	id := uuid.New()

	c.Put(id, "first")
	c.Put(id, "second")

	p, ok := c.Get(id)
	assert.True(t, ok)
	assert.Equal(t, "second", p.String())
	assert.Equal(t, 1, c.Len())
}

func TestCache_Remove(t *testing.T) {
	c := NewCache()
	id := uuid.New()
	c.Put(id, "pw")

	c.Remove(id)
	_, ok := c.Get(id)
	assert.False(t, ok)
}

func TestCache_Clear(t *testing.T) {
	c := NewCache()
	c.Put(uuid.New(), "pw1")
	c.Put(uuid.New(), "pw2")
	assert.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCache_RemoveMissingIsNoOp(t *testing.T) {
	c := NewCache()
	c.Remove(uuid.New())
	assert.Equal(t, 0, c.Len())
}
