package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dyluth/errand/pkg/entity"
	"github.com/redis/go-redis/v9"
)

// probeTimeout bounds every connectivity check against Redis.
const probeTimeout = 2 * time.Second

// Redis is a remote facade backed by a real Redis server.
// Accepted commits are mirrored as hashes and published on the namespace's
// commit channel. All keys and channels are namespaced.
// The facade is thread-safe and can be used concurrently from multiple goroutines.
type Redis struct {
	rdb       *redis.Client
	namespace string
}

// NewRedis creates a Redis facade for the given namespace.
// Returns an error if namespace is empty.
func NewRedis(opts *redis.Options, namespace string) (*Redis, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}

	return &Redis{
		rdb:       redis.NewClient(opts),
		namespace: namespace,
	}, nil
}

// Close closes the Redis connection. Implements io.Closer.
func (r *Redis) Close() error {
	return r.rdb.Close()
}

// Namespace returns the namespace keys and channels are scoped to.
func (r *Redis) Namespace() string {
	return r.namespace
}

// Ping verifies Redis connectivity and returns the underlying error.
func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	return r.rdb.Ping(ctx).Err()
}

// IsConnected reports whether Redis answers a PING. Implements Facade.
func (r *Redis) IsConnected(ctx context.Context) bool {
	return r.Ping(ctx) == nil
}

// Send mirrors a commit into Redis and publishes it. Implements Facade.
//
// The entity hash at errand:{namespace}:entity:{id} is replaced, or deleted when
// the commit removes the entity. Any Redis failure is reported as
// ErrConnectionInterrupted; the caller must not apply the mutation locally.
func (r *Redis) Send(ctx context.Context, c Commit) error {
	if err := r.Ping(ctx); err != nil {
		return fmt.Errorf("redis unreachable: %v: %w", err, ErrConnectionInterrupted)
	}

	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal commit: %w", err)
	}

	key := entity.EntityKey(r.namespace, c.EntityID)
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, key)
	if !c.Removes() {
		pipe.HSet(ctx, key, entity.EntityToHash(c.Entity))
	}
	pipe.Publish(ctx, entity.CommitEventsChannel(r.namespace), payload)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mirror commit: %v: %w", err, ErrConnectionInterrupted)
	}

	return nil
}

// GetMirrored retrieves a mirrored entity by id.
// Returns (nil, redis.Nil) if it was never mirrored or has been deleted.
// Use IsNotFound() to check for not-found errors.
func (r *Redis) GetMirrored(ctx context.Context, id string) (*entity.Entity, error) {
	hashData, err := r.rdb.HGetAll(ctx, entity.EntityKey(r.namespace, id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read entity from Redis: %w", err)
	}

	// HGetAll returns an empty map for non-existent keys
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	e, err := entity.HashToEntity(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize entity: %w", err)
	}
	return e, nil
}

// MirroredIDs returns the ids of every mirrored entity in the namespace.
// Uses SCAN so large namespaces don't block the server.
func (r *Redis) MirroredIDs(ctx context.Context) ([]string, error) {
	prefix := strings.TrimSuffix(entity.EntityKeyPattern(r.namespace), "*")
	iter := r.rdb.Scan(ctx, 0, entity.EntityKeyPattern(r.namespace), 0).Iterator()

	var ids []string
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan mirrored entities: %w", err)
	}
	return ids, nil
}

// Subscription represents an active Pub/Sub subscription to commit events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *Commit
	errors <-chan error
	cancel func()
	done   <-chan struct{}
	once   sync.Once
}

// Events returns the channel of commit events.
// The channel is closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *Commit {
	return s.events
}

// Errors returns the channel of non-fatal subscription errors.
// The subscription continues after errors - malformed messages are skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and waits for its goroutine to exit. Implements io.Closer.
// Safe to call multiple times - subsequent calls are no-ops.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	<-s.done
	return nil
}

// SubscribeCommits subscribes to commit events for this namespace.
// The subscription is confirmed with Redis before returning, so commits sent
// afterwards are guaranteed to be delivered.
//
// Events are delivered on a buffered channel (size 10). Redis Pub/Sub is
// at-most-once: a subscriber that falls too far behind loses events.
func (r *Redis) SubscribeCommits(ctx context.Context) (*Subscription, error) {
	pubsub := r.rdb.Subscribe(ctx, entity.CommitEventsChannel(r.namespace))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to commit events: %w", err)
	}

	eventsChan := make(chan *Commit, 10)
	errorsChan := make(chan error, 10)
	done := make(chan struct{})

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(done)
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var commit Commit
				if err := json.Unmarshal([]byte(msg.Payload), &commit); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal commit event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &commit:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
		done:   done,
	}, nil
}

// IsNotFound returns true if the error is a Redis "key not found" error (redis.Nil).
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
