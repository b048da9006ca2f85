package service

import (
	"container/list"
	"strings"
	"sync"

	"core/internal/model"
)

// answerCache is a bounded LRU over finished turns, keyed by the
// normalized utterance plus the canonical filter string. It avoids
// repeated model calls for identical queries within a session.
type answerCache struct {
	mu    sync.Mutex
	max   int
	ll    *list.List
	items map[string]*list.Element
}

type cacheEntry struct {
	key  string
	resp model.TurnResponse
}

func newAnswerCache(max int) *answerCache {
	if max <= 0 {
		max = 1
	}
	return &answerCache{
		max:   max,
		ll:    list.New(),
		items: make(map[string]*list.Element, max),
	}
}

func (c *answerCache) Get(key string) (model.TurnResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return model.TurnResponse{}, false
	}
	c.ll.MoveToFront(elem)
	return elem.Value.(*cacheEntry).resp, true
}

func (c *answerCache) Put(key string, resp model.TurnResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*cacheEntry).resp = resp
		c.ll.MoveToFront(elem)
		return
	}

	c.items[key] = c.ll.PushFront(&cacheEntry{key: key, resp: resp})

	for c.ll.Len() > c.max {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

// cacheKey normalizes the utterance (lowercased, whitespace collapsed) and
// appends the canonical filter string.
func cacheKey(utterance string, filters *model.FilterContext) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(utterance)), " ")
	return normalized + "|" + filters.CanonicalKey()
}
