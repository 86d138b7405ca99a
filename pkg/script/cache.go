package script

import (
	"container/list"
	"sync"

	"github.com/expr-lang/expr/vm"
)

// programCache is a bounded LRU of compiled expr programs, keyed by the
// expression source. Compilation is deterministic, so a stale eviction only
// costs a recompile.
type programCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
	max     int
}

type cacheEntry struct {
	expression string
	program    *vm.Program
}

func newProgramCache(max int) *programCache {
	if max < 1 {
		max = DefaultCacheSize
	}
	return &programCache{
		entries: make(map[string]*list.Element, max),
		order:   list.New(),
		max:     max,
	}
}

func (c *programCache) get(expression string) (*vm.Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[expression]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).program, true
}

func (c *programCache) put(expression string, program *vm.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[expression]; ok {
		elem.Value.(*cacheEntry).program = program
		c.order.MoveToFront(elem)
		return
	}
	c.entries[expression] = c.order.PushFront(&cacheEntry{expression: expression, program: program})
	for c.order.Len() > c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).expression)
	}
}

// len reports the current number of cached programs (test hook).
func (c *programCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
