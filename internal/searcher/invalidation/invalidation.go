// Package invalidation propagates document deletions into live textexec
// query trees. A DeletionRelay consumes Kafka deletion events and
// republishes them to a Redis pub/sub channel; a Subscriber in every
// searcher process listens on that channel and calls Stage.Invalidate on
// whatever root stage is currently executing for each affected record.
package invalidation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/searcher/textexec"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/pkg/kafka"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/pkg/redis"
)

// Channel is the Redis pub/sub channel deletion notifications travel over.
const Channel = "textexec:doc:deleted"

// DeletionEvent is the payload carried on both the Kafka topic and the
// Redis channel.
type DeletionEvent struct {
	RecordID string `json:"record_id"`
}

// DeletionRelay consumes a Kafka "document deleted" topic and republishes
// each event to the Redis invalidation channel, so every searcher process
// (not just the one that handled the delete request) observes it.
type DeletionRelay struct {
	redis  *pkgredis.Client
	logger *slog.Logger
}

// NewDeletionRelay wraps redisClient for use as a kafka.MessageHandler.
func NewDeletionRelay(redisClient *pkgredis.Client) *DeletionRelay {
	return &DeletionRelay{
		redis:  redisClient,
		logger: slog.Default().With("component", "deletion-relay"),
	}
}

// Handle implements kafka.MessageHandler.
func (r *DeletionRelay) Handle(ctx context.Context, key []byte, value []byte) error {
	event, err := kafka.DecodeJSON[DeletionEvent](value)
	if err != nil {
		r.logger.Error("failed to decode deletion event", "error", err)
		return nil
	}
	if event.RecordID == "" {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling deletion event: %w", err)
	}
	if err := r.redis.Publish(ctx, Channel, payload); err != nil {
		return fmt.Errorf("publishing to %s: %w", Channel, err)
	}
	return nil
}

// Registry tracks the stage trees currently executing so a Subscriber can
// invalidate every one of them when a deletion arrives.
type Registry struct {
	mu     sync.Mutex
	active map[int64]textexec.Stage
	nextID int64
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{active: make(map[int64]textexec.Stage)}
}

// Register adds root to the set of live stage trees and returns a handle to
// remove it again once the query finishes.
func (reg *Registry) Register(root textexec.Stage) (unregister func()) {
	reg.mu.Lock()
	id := reg.nextID
	reg.nextID++
	reg.active[id] = root
	reg.mu.Unlock()

	return func() {
		reg.mu.Lock()
		delete(reg.active, id)
		reg.mu.Unlock()
	}
}

// InvalidateAll forwards recordID to every currently-registered stage tree.
func (reg *Registry) InvalidateAll(recordID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for _, root := range reg.active {
		root.Invalidate(recordID)
	}
}

// Subscriber listens on the Redis invalidation channel and forwards each
// deleted record id to a Registry of in-flight stage trees.
type Subscriber struct {
	redis    *pkgredis.Client
	registry *Registry
	logger   *slog.Logger
}

// NewSubscriber wraps redisClient, forwarding deletions to registry.
func NewSubscriber(redisClient *pkgredis.Client, registry *Registry) *Subscriber {
	return &Subscriber{
		redis:    redisClient,
		registry: registry,
		logger:   slog.Default().With("component", "invalidation-subscriber"),
	}
}

// Start blocks, relaying deletion messages until ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	pubsub := s.redis.Subscribe(ctx, Channel)
	defer pubsub.Close()

	s.logger.Info("invalidation subscriber started", "channel", Channel)
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("invalidation subscriber stopping")
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event DeletionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				s.logger.Error("failed to decode invalidation message", "error", err)
				continue
			}
			if event.RecordID == "" {
				continue
			}
			s.registry.InvalidateAll(event.RecordID)
		}
	}
}
