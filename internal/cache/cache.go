package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrMiss key absent or expired
var ErrMiss = errors.New("cache miss")

// Provider JSON value cache
type Provider interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

func (it memoryItem) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && now.After(it.expiresAt)
}

// InMemoryProvider process-local Provider
type InMemoryProvider struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
}

func NewInMemoryProvider() *InMemoryProvider {
	return &InMemoryProvider{items: map[string]memoryItem{}, now: time.Now}
}

func (p *InMemoryProvider) Get(_ context.Context, key string, dest any) error {
	p.mu.RLock()
	item, ok := p.items[key]
	p.mu.RUnlock()
	if !ok {
		return ErrMiss
	}
	if item.expired(p.now()) {
		// a Set may have replaced the entry since the read lock was released
		p.mu.Lock()
		item, ok = p.items[key]
		if ok && item.expired(p.now()) {
			delete(p.items, key)
			ok = false
		}
		p.mu.Unlock()
		if !ok {
			return ErrMiss
		}
	}
	if err := json.Unmarshal(item.data, dest); err != nil {
		return fmt.Errorf("decode cached %s: %w", key, err)
	}
	return nil
}

func (p *InMemoryProvider) Set(_ context.Context, key string, value any, expiration time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var expiresAt time.Time
	if expiration > 0 {
		expiresAt = p.now().Add(expiration)
	}
	p.mu.Lock()
	p.items[key] = memoryItem{data: b, expiresAt: expiresAt}
	p.mu.Unlock()
	return nil
}

func (p *InMemoryProvider) Delete(_ context.Context, key string) error {
	p.mu.Lock()
	delete(p.items, key)
	p.mu.Unlock()
	return nil
}

// Purge drops expired entries.
func (p *InMemoryProvider) Purge() int {
	now := p.now()
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for k, it := range p.items {
		if it.expired(now) {
			delete(p.items, k)
			n++
		}
	}
	return n
}

// Key joins parts with ":" under the "fare" prefix.
func Key(parts ...string) string {
	return "fare:" + strings.Join(parts, ":")
}
