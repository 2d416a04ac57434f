package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"quizhub/internal/domain"
)

// Store implements app.DocumentStore on Redis. Each document lives under its
// hierarchical path as a plain key ("quizzes/{id}", "attempts/{id}",
// "users/{id}"); collections are enumerated with SCAN over the path prefix.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, path string) (json.RawMessage, error) {
	data, err := s.client.Get(ctx, path).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", path, err)
	}
	return data, nil
}

func (s *Store) Set(ctx context.Context, path string, doc json.RawMessage) error {
	if err := s.client.Set(ctx, path, []byte(doc), 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", path, err)
	}
	return nil
}

func (s *Store) SetIfAbsent(ctx context.Context, path string, doc json.RawMessage) (bool, error) {
	created, err := s.client.SetNX(ctx, path, []byte(doc), 0).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", path, err)
	}
	return created, nil
}

func (s *Store) Remove(ctx context.Context, path string) error {
	if err := s.client.Del(ctx, path).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", path, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, collection+"/*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan %s: %w", collection, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget %s: %w", collection, err)
	}
	docs := make([]json.RawMessage, 0, len(values))
	for _, value := range values {
		// A key expired between SCAN and MGET leaves a nil slot.
		if str, ok := value.(string); ok {
			docs = append(docs, json.RawMessage(str))
		}
	}
	return docs, nil
}
