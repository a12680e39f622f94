package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/tutorly/tutorly/core"
)

// envelope is an Event as relayed between instances.
type envelope struct {
	Table    string          `json:"table"`
	Type     string          `json:"type"`
	Record   json.RawMessage `json:"record"`
	Audience []string        `json:"audience"`
}

// RedisBroker publishes events to a Redis channel and relays the ones received from it
// to the local Hub, so that every API instance delivers events to its own subscribers.
type RedisBroker struct {
	client  *redis.Client
	channel string
	hub     *Hub
	logger  core.Logger
}

var _ core.Publisher = (*RedisBroker)(nil)

func NewRedisClient(conf *core.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Address,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
}

func NewRedisBroker(client *redis.Client, channel string, hub *Hub, logger core.Logger) *RedisBroker {
	return &RedisBroker{client: client, channel: channel, hub: hub, logger: logger}
}

// Publish falls back to local delivery when Redis cannot be reached.
func (b *RedisBroker) Publish(ctx context.Context, evt core.Event) {
	if len(evt.Audience) == 0 {
		return
	}
	payload, err := encode(evt)
	if err == nil {
		err = b.client.Publish(ctx, b.channel, payload).Err()
	}
	if err != nil {
		b.logger.Error(fmt.Sprintf("realtime: publishing to redis: %v", err), err)
		b.hub.Publish(ctx, evt)
	}
}

// Run relays the events received on the channel to the hub until ctx is done.
func (b *RedisBroker) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return errors.Wrap(err, "subscribing to redis channel")
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			evt, err := decode(msg.Payload)
			if err != nil {
				b.logger.Error(fmt.Sprintf("realtime: decoding redis message: %v", err), err)
				continue
			}
			b.hub.Publish(ctx, evt)
		}
	}
}

func encode(evt core.Event) (string, error) {
	record, err := json.Marshal(evt.Record)
	if err != nil {
		return "", errors.Wrap(err, "encoding record")
	}
	data, err := json.Marshal(envelope{Table: evt.Table, Type: evt.Type, Record: record, Audience: evt.Audience})
	if err != nil {
		return "", errors.Wrap(err, "encoding event")
	}
	return string(data), nil
}

func decode(payload string) (core.Event, error) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return core.Event{}, err
	}
	return core.Event{Table: env.Table, Type: env.Type, Record: env.Record, Audience: env.Audience}, nil
}
