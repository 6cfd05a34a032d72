package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	domuser "github.com/kailas-cloud/userdex/internal/domain/user"
)

// Event types.
const (
	EventUserUpserted = "user.upserted"
	EventUserRemoved  = "user.removed"
	EventUsersBulk    = "users.bulk_upserted"
	EventUsersPurged  = "users.purged"
)

var (
	// ErrMalformedEvent is returned for payloads that cannot be decoded or miss required fields.
	ErrMalformedEvent = errors.New("malformed event")
	// ErrUnknownEvent is returned for unrecognized event types.
	ErrUnknownEvent = errors.New("unknown event")
)

// Users is the user operations contract consumed by the worker.
type Users interface {
	AddOrUpdate(ctx context.Context, u domuser.User) (bool, error)
	AddOrUpdateBulk(ctx context.Context, users []domuser.User, indexName string) (bool, error)
	Remove(ctx context.Context, key string) (bool, error)
	RemoveAll(ctx context.Context) (int64, bool, error)
}

// Event is a user change event read from Kafka.
type Event struct {
	Event string         `json:"event"`
	User  *domuser.User  `json:"user,omitempty"`
	Key   string         `json:"key,omitempty"`
	Users []domuser.User `json:"users,omitempty"`
	Index string         `json:"index,omitempty"`
}

// Handle decodes msg and applies it. Store rejections are logged, not returned.
func Handle(ctx context.Context, msg kafka.Message, users Users, log *zap.Logger) error {
	var ev Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	var (
		ok  bool
		err error
	)
	switch ev.Event {
	case EventUserUpserted:
		if ev.User == nil {
			return fmt.Errorf("%w: %s without user", ErrMalformedEvent, ev.Event)
		}
		ok, err = users.AddOrUpdate(ctx, *ev.User)
	case EventUserRemoved:
		if ev.Key == "" {
			return fmt.Errorf("%w: %s without key", ErrMalformedEvent, ev.Event)
		}
		ok, err = users.Remove(ctx, ev.Key)
	case EventUsersBulk:
		ok, err = users.AddOrUpdateBulk(ctx, ev.Users, ev.Index)
	case EventUsersPurged:
		var n int64
		n, ok, err = users.RemoveAll(ctx)
		log = log.With(zap.Int64("deleted", n))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Event)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", ev.Event, err)
	}

	if !ok {
		log.Warn("Kafka event rejected by store", zap.String("event", ev.Event))
		return nil
	}
	log.Debug("Kafka event applied", zap.String("event", ev.Event))
	return nil
}
