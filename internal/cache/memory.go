package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultSize = 500

type item struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process LRU cache. Entries expire lazily on read.
type Memory struct {
	lru *lru.Cache[string, item]
	now func() time.Time
}

var _ Cache = (*Memory)(nil)

func NewMemory(size int) (*Memory, error) {
	if size <= 0 {
		size = DefaultSize
	}
	l, err := lru.New[string, item](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &Memory{lru: l, now: time.Now}, nil
}

func (c *Memory) Get(_ context.Context, key string) (string, bool, error) {
	it, ok := c.lru.Get(key)
	if !ok {
		return "", false, nil
	}
	if !it.expiresAt.IsZero() && c.now().After(it.expiresAt) {
		c.lru.Remove(key)
		return "", false, nil
	}
	return it.value, true, nil
}

func (c *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	it := item{value: value}
	if ttl > 0 {
		it.expiresAt = c.now().Add(ttl)
	}
	c.lru.Add(key, it)
	return nil
}

func (c *Memory) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}
