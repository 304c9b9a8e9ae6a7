package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Client provides namespace-scoped Redis operations for runs.
// It is safe for concurrent use.
type Client struct {
	rdb       *redis.Client
	namespace string
}

// NewClient creates a run store client for namespace.
//
// Returns an error if namespace is empty.
func NewClient(redisOpts *redis.Options, namespace string) (*Client, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}

	return &Client{
		rdb:       redis.NewClient(redisOpts),
		namespace: namespace,
	}, nil
}

// Namespace returns the namespace the client writes to.
func (c *Client) Namespace() string {
	return c.namespace
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// SaveRun writes a run and publishes it on the run events channel.
// Writing the same run twice overwrites it.
func (c *Client) SaveRun(ctx context.Context, r *Run) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid run: %w", err)
	}

	hash, err := RunToHash(r)
	if err != nil {
		return fmt.Errorf("failed to serialize run: %w", err)
	}

	key := RunKey(c.namespace, r.ID)
	if err := c.rdb.HSet(ctx, key, hash).Err(); err != nil {
		return fmt.Errorf("failed to write run to Redis: %w", err)
	}

	runJSON, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal run for event: %w", err)
	}

	if err := c.rdb.Publish(ctx, RunEventsChannel(c.namespace), runJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish run event: %w", err)
	}

	log.Printf("[Store] Saved run %s (%d assignments) to %s", r.ID, len(r.Assignments), key)
	return nil
}

// GetRun retrieves a run by ID.
// Returns (nil, redis.Nil) if the run doesn't exist; check with IsNotFound.
func (c *Client) GetRun(ctx context.Context, runID string) (*Run, error) {
	hashData, err := c.rdb.HGetAll(ctx, RunKey(c.namespace, runID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read run from Redis: %w", err)
	}

	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	run, err := HashToRun(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize run: %w", err)
	}
	return run, nil
}

// ScanRunIDs returns the sorted IDs of runs whose ID starts with prefix.
// An empty prefix returns every run. Uses SCAN, so it does not block Redis.
func (c *Client) ScanRunIDs(ctx context.Context, prefix string) ([]string, error) {
	keyPrefix := RunKeyPrefix(c.namespace)
	iter := c.rdb.Scan(ctx, 0, keyPrefix+prefix+"*", 0).Iterator()

	var ids []string
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan runs: %w", err)
	}

	sort.Strings(ids)
	return ids, nil
}

// ListRuns returns every run in the namespace, oldest first. Malformed runs
// are skipped with a warning.
func (c *Client) ListRuns(ctx context.Context) ([]*Run, error) {
	ids, err := c.ScanRunIDs(ctx, "")
	if err != nil {
		return nil, err
	}

	runs := make([]*Run, 0, len(ids))
	for _, id := range ids {
		run, err := c.GetRun(ctx, id)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			log.Printf("[Store] Warning: skipping run %s: %v", id, err)
			continue
		}
		runs = append(runs, run)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAtMs < runs[j].CreatedAtMs
	})
	return runs, nil
}

// Subscription is an active subscription to run events.
// Callers must Close it.
type Subscription struct {
	events <-chan *Run
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of runs. It is closed when the subscription ends.
func (s *Subscription) Events() <-chan *Run {
	return s.events
}

// Errors returns non-fatal errors such as undecodable messages.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeRunEvents subscribes to finished runs. It returns once Redis has
// confirmed the subscription, so runs saved afterwards are delivered.
func (c *Client) SubscribeRunEvents(ctx context.Context) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, RunEventsChannel(c.namespace))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to run events: %w", err)
	}

	eventsChan := make(chan *Run, 10)
	errorsChan := make(chan error, 10)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
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

				var run Run
				if err := json.Unmarshal([]byte(msg.Payload), &run); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal run event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &run:
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
	}, nil
}

// IsNotFound reports whether err is a Redis "key not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
