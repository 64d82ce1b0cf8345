package gpt

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThreadCacheConcurrentAccess(t *testing.T) {
	cache := newThreadCache()

	// Many first-time users resolve their thread id at the same time; the
	// cache must survive concurrent reads and writes (run with -race).
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("telegram:%d", n%10)
			cache.put(key, fmt.Sprintf("thread-%d", n))
			_ = cache.get(key)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		assert.NotEmpty(t, cache.get(fmt.Sprintf("telegram:%d", i)))
	}
}

func TestThreadCacheMiss(t *testing.T) {
	cache := newThreadCache()
	assert.Equal(t, "", cache.get("whatsapp:unknown"))

	cache.put("whatsapp:u1", "thread-1")
	assert.Equal(t, "thread-1", cache.get("whatsapp:u1"))
}
