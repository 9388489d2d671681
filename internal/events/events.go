package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Event types published by the grading and enrollment flows.
const (
	SubmissionCreated   = "submission.created"
	SubmissionUpdated   = "submission.updated"
	GradeRecorded       = "grade.recorded"
	GradeUpdated        = "grade.updated"
	EnrollmentCreated   = "enrollment.created"
	EnrollmentProgress  = "enrollment.progress"
	EnrollmentCompleted = "enrollment.completed"
)

// Event is a domain change affecting one student.
type Event struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Source     string                 `json:"source"`
	StudentID  uint                   `json:"student_id"`
	EntityID   uint                   `json:"entity_id"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Handler reacts to a delivered event.
type Handler func(ctx context.Context, event Event)

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Bus dispatches events to local handlers and fans them out over redis pub/sub and NATS.
// Events received from peers are dispatched locally; our own echoes are dropped.
type Bus struct {
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	nodeID      string

	mu       sync.RWMutex
	handlers []Handler
}

// NewBus constructs a bus. Either transport may be nil, in which case delivery stays in-process.
func NewBus(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) *Bus {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase
		subject = strings.ReplaceAll(channelBase, ":", ".")
	}

	return &Bus{
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "event_bus").Logger(),
		nodeID:      uuid.NewString(),
	}
}

// Subscribe registers a handler for every event.
func (b *Bus) Subscribe(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Publish stamps the event, runs local handlers and forwards it to the configured transports.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	event.Source = b.nodeID

	b.dispatch(ctx, event)

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var errs []error
	if b.redis != nil && b.redisStream != "" {
		if err := b.redis.Publish(ctx, b.redisStream, payload).Err(); err != nil {
			errs = append(errs, err)
		}
	}

	if b.nats != nil && b.natsSubject != "" {
		if err := b.nats.Publish(b.natsSubject, payload); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Start consumes peer events until ctx is cancelled.
func (b *Bus) Start(ctx context.Context) {
	if b.redis != nil && b.redisStream != "" {
		go b.consumeRedis(ctx)
	}
	if b.nats != nil && b.natsSubject != "" {
		go b.consumeNATS(ctx)
	}
}

func (b *Bus) consumeRedis(ctx context.Context) {
	pubsub := b.redis.Subscribe(ctx, b.redisStream)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			b.logger.Error().Err(err).Msg("event redis subscription closed")
			return
		}
		b.handlePayload(ctx, []byte(msg.Payload))
	}
}

func (b *Bus) consumeNATS(ctx context.Context) {
	sub, err := b.nats.Subscribe(b.natsSubject, func(msg *nats.Msg) {
		b.handlePayload(ctx, msg.Data)
	})
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to subscribe to nats events subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			b.logger.Warn().Err(err).Msg("failed to drain event nats subscription")
		}
	}()
}

func (b *Bus) handlePayload(ctx context.Context, payload []byte) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		b.logger.Warn().Err(err).Msg("invalid event payload")
		return
	}

	if event.Source == b.nodeID {
		return
	}

	b.dispatch(ctx, event)
}

func (b *Bus) dispatch(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, event)
	}
}
