package bulletin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Client provides instance-scoped Redis operations for the bulletin.
// All keys and channels are automatically namespaced with the instance name.
// The client is safe for concurrent use.
type Client struct {
	rdb          *redis.Client
	instanceName string
	now          func() time.Time
}

// NewClient creates a new bulletin client for the specified instance.
// Returns an error if instanceName is empty or contains ':'.
func NewClient(redisOpts *redis.Options, instanceName string) (*Client, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}
	if strings.Contains(instanceName, ":") {
		return nil, fmt.Errorf("instance name cannot contain ':' (got %q)", instanceName)
	}

	return &Client{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
		now:          time.Now,
	}, nil
}

// NewClientFromURL parses a redis:// URL and creates a client for instanceName.
func NewClientFromURL(redisURL, instanceName string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL %q: %w", redisURL, err)
	}
	return NewClient(opts, instanceName)
}

// InstanceName returns the namespace this client writes under.
func (c *Client) InstanceName() string {
	return c.instanceName
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// PublishStandup stores a standup under a fresh UUID, indexes it by publish
// time and announces it on the events channel.
func (c *Client) PublishStandup(ctx context.Context, date, hostTime, payload string) (*Standup, error) {
	s := &Standup{
		ID:            uuid.New().String(),
		Date:          date,
		HostTime:      hostTime,
		PublishedAtMs: c.now().UnixMilli(),
		Payload:       payload,
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid standup: %w", err)
	}

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, StandupKey(c.instanceName, s.ID), StandupToHash(s))
	pipe.ZAdd(ctx, StandupIndexKey(c.instanceName), redis.Z{
		Score:  float64(s.PublishedAtMs),
		Member: s.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to write standup to Redis: %w", err)
	}

	if err := c.announce(ctx, EventKindStandup, s.ID); err != nil {
		return nil, err
	}
	return s, nil
}

// GetStandup retrieves a standup by ID.
// Returns (nil, redis.Nil) if it doesn't exist; check with IsNotFound.
func (c *Client) GetStandup(ctx context.Context, standupID string) (*Standup, error) {
	hashData, err := c.rdb.HGetAll(ctx, StandupKey(c.instanceName, standupID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read standup from Redis: %w", err)
	}
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	s, err := HashToStandup(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize standup: %w", err)
	}
	return s, nil
}

// ListStandups returns up to limit standups, newest first. A limit of zero or
// less returns all of them. Index entries whose hash has gone are skipped.
func (c *Client) ListStandups(ctx context.Context, limit int) ([]*Standup, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	ids, err := c.rdb.ZRevRange(ctx, StandupIndexKey(c.instanceName), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read standup index: %w", err)
	}

	standups := make([]*Standup, 0, len(ids))
	for _, id := range ids {
		s, err := c.GetStandup(ctx, id)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		standups = append(standups, s)
	}
	return standups, nil
}

// PublishAgenda stores the latest agenda text for a ticket and announces it.
func (c *Client) PublishAgenda(ctx context.Context, ticketID, text string) error {
	if ticketID == "" {
		return fmt.Errorf("ticket id cannot be empty")
	}
	if err := c.rdb.Set(ctx, AgendaKey(c.instanceName, ticketID), text, 0).Err(); err != nil {
		return fmt.Errorf("failed to write agenda to Redis: %w", err)
	}
	return c.announce(ctx, EventKindAgenda, ticketID)
}

// GetAgenda returns the latest agenda published for ticketID.
// Returns ("", redis.Nil) if none has been published.
func (c *Client) GetAgenda(ctx context.Context, ticketID string) (string, error) {
	text, err := c.rdb.Get(ctx, AgendaKey(c.instanceName, ticketID)).Result()
	if err != nil {
		if IsNotFound(err) {
			return "", redis.Nil
		}
		return "", fmt.Errorf("failed to read agenda from Redis: %w", err)
	}
	return text, nil
}

func (c *Client) announce(ctx context.Context, kind EventKind, id string) error {
	data, err := json.Marshal(Event{Kind: kind, ID: id})
	if err != nil {
		return fmt.Errorf("failed to marshal bulletin event: %w", err)
	}
	if err := c.rdb.Publish(ctx, EventsChannel(c.instanceName), data).Err(); err != nil {
		return fmt.Errorf("failed to publish bulletin event: %w", err)
	}
	return nil
}

// Subscription represents an active Pub/Sub subscription to bulletin events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *Event
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of bulletin events.
// The channel is closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *Event {
	return s.events
}

// Errors returns the channel of non-fatal subscription errors.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeEvents subscribes to bulletin events for this instance.
// The subscription is confirmed before returning, so events published after
// this call are delivered.
func (c *Client) SubscribeEvents(ctx context.Context) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, EventsChannel(c.instanceName))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to bulletin events: %w", err)
	}

	eventsChan := make(chan *Event, 10)
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

				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal bulletin event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &event:
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

// IsNotFound returns true if the error is a Redis "key not found" error (redis.Nil).
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
