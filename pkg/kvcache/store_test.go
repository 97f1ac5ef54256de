package kvcache_test

import (
	"testing"
	"time"

	"github.com/conectamentor/mentoria-api/pkg/kvcache"
	"github.com/stretchr/testify/assert"
)

func TestMemoryStore_SetGet(t *testing.T) {
	store := kvcache.NewMemoryStore(0)

	store.Set("token", "abc123", time.Minute)

	value, found := store.Get("token")
	assert.True(t, found)
	assert.Equal(t, "abc123", value)
	assert.True(t, store.Exists("token"))
}

func TestMemoryStore_MissingKey(t *testing.T) {
	store := kvcache.NewMemoryStore(0)

	_, found := store.Get("nope")
	assert.False(t, found)
	assert.False(t, store.Exists("nope"))
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := kvcache.NewMemoryStore(0)

	store.Set("lock", true, 10*time.Millisecond)
	assert.True(t, store.Exists("lock"))

	time.Sleep(30 * time.Millisecond)
	assert.False(t, store.Exists("lock"))
}

func TestMemoryStore_Delete(t *testing.T) {
	store := kvcache.NewMemoryStore(0)

	store.Set("key", 42, time.Minute)
	store.Delete("key")
	assert.False(t, store.Exists("key"))
}
