package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

var ErrCacheUnavailable = errors.New("cache client is not configured")

// CacheBuilder assembles a single keyed cache operation:
//
//	NewCacheBuilder(client, id).WithHashPattern("advisor:%s").WithStruct(v).WithTTL(ttl).Set()
type CacheBuilder struct {
	client      CacheClient
	key         string
	hashPattern string
	value       any
	ttl         time.Duration
	ctx         context.Context
}

func NewCacheBuilder(client CacheClient, key any) *CacheBuilder {
	return &CacheBuilder{
		client: client,
		key:    fmt.Sprint(key),
		ctx:    context.Background(),
	}
}

func (b *CacheBuilder) WithHashPattern(pattern string) *CacheBuilder {
	b.hashPattern = pattern
	return b
}

func (b *CacheBuilder) WithStruct(value any) *CacheBuilder {
	b.value = value
	return b
}

func (b *CacheBuilder) WithTTL(ttl time.Duration) *CacheBuilder {
	b.ttl = ttl
	return b
}

func (b *CacheBuilder) WithContext(ctx context.Context) *CacheBuilder {
	if ctx != nil {
		b.ctx = ctx
	}
	return b
}

func (b *CacheBuilder) Key() string {
	if b.hashPattern == "" {
		return b.key
	}
	return fmt.Sprintf(b.hashPattern, b.key)
}

func (b *CacheBuilder) Set() error {
	if b.client == nil {
		return ErrCacheUnavailable
	}

	payload, err := json.Marshal(b.value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	var cmd valkey.Completed
	if b.ttl > 0 {
		seconds := int64(b.ttl / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		cmd = b.client.B().Set().Key(b.Key()).Value(string(payload)).ExSeconds(seconds).Build()
	} else {
		cmd = b.client.B().Set().Key(b.Key()).Value(string(payload)).Build()
	}

	return b.client.Do(b.ctx, cmd).Error()
}

// Get decodes the cached value into target. A missing key is reported as
// found == false with a nil error.
func (b *CacheBuilder) Get(target any) (bool, error) {
	if b.client == nil {
		return false, ErrCacheUnavailable
	}

	payload, err := b.client.Do(b.ctx, b.client.B().Get().Key(b.Key()).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(payload, target); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return true, nil
}

func (b *CacheBuilder) Delete() error {
	if b.client == nil {
		return ErrCacheUnavailable
	}

	return b.client.Do(b.ctx, b.client.B().Del().Key(b.Key()).Build()).Error()
}

// Publish sends the value, json encoded, on the channel named by the key.
func (b *CacheBuilder) Publish() error {
	if b.client == nil {
		return ErrCacheUnavailable
	}

	payload, err := json.Marshal(b.value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	cmd := b.client.B().Publish().Channel(b.Key()).Message(string(payload)).Build()
	return b.client.Do(b.ctx, cmd).Error()
}
