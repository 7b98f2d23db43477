// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

// Package events is the in-process event bus. Recorded clicks are published
// on TopicClicksRecorded and fanned out to handlers through a Watermill
// router running over a gochannel pub/sub:
//
//	bus, err := events.NewBus(&cfg.Events)
//	bus.HandleClicks("invalidate_top_categories", events.InvalidateTopCategories(engine))
//	tracker := clicks.NewTracker(store, clicks.WithPublisher(bus))
//	go bus.Run(ctx)
//
// Delivery is at-most-once: a handler that still fails after its retries is
// logged and the message acknowledged.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/wikifeed/internal/clicks"
	"github.com/tomtom215/wikifeed/internal/config"
	"github.com/tomtom215/wikifeed/internal/logging"
	"github.com/tomtom215/wikifeed/internal/metrics"
)

// TopicClicksRecorded carries ClickRecorded payloads.
const TopicClicksRecorded = "clicks.recorded"

// ErrMalformedPayload is returned by DecodeClick for undecodable messages.
var ErrMalformedPayload = errors.New("malformed event payload")

// ClickRecorded is the payload published after a click is stored.
type ClickRecorded struct {
	EventID    string    `json:"event_id"`
	UserID     int64     `json:"user_id"`
	ArticleID  string    `json:"article_id"`
	Categories []string  `json:"categories"`
	Timestamp  time.Time `json:"timestamp"`
}

// EncodeClick serializes a stored click.
func EncodeClick(e *clicks.Event) ([]byte, error) {
	if e == nil {
		return nil, errors.New("nil click event")
	}
	data, err := json.Marshal(ClickRecorded{
		EventID:    e.ID,
		UserID:     e.UserID,
		ArticleID:  e.ArticleID,
		Categories: e.Categories,
		Timestamp:  e.Timestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal click: %w", err)
	}
	return data, nil
}

// DecodeClick parses a ClickRecorded payload.
func DecodeClick(data []byte) (*ClickRecorded, error) {
	var c ClickRecorded
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if c.UserID <= 0 || c.ArticleID == "" {
		return nil, fmt.Errorf("%w: missing user or article", ErrMalformedPayload)
	}
	return &c, nil
}

// ClickHandler reacts to one recorded click. A returned error triggers the
// router's retry policy.
type ClickHandler func(ctx context.Context, c *ClickRecorded) error

// Bus publishes domain events and dispatches them to registered handlers.
type Bus struct {
	pubsub *gochannel.GoChannel
	router *message.Router
	logger zerolog.Logger
}

// NewBus creates a bus with Recoverer and Retry middleware installed.
// Handlers must be registered before Run.
func NewBus(cfg *config.EventsConfig) (*Bus, error) {
	if cfg == nil {
		return nil, errors.New("events config is required")
	}
	wmLogger := watermill.NewSlogLogger(logging.NewComponentSlogLogger("events"))

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.BufferSize,
	}, wmLogger)

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: cfg.CloseTimeout,
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	b := &Bus{
		pubsub: pubsub,
		router: router,
		logger: logging.WithComponent("events"),
	}

	// Middleware order (outer to inner): ack after exhaustion, panic
	// recovery, retry with backoff.
	router.AddMiddleware(b.ackExhausted)
	router.AddMiddleware(middleware.Recoverer)
	retry := middleware.Retry{
		MaxRetries:      cfg.RetryCount,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     10 * cfg.RetryInitialInterval,
		Multiplier:      2.0,
		Logger:          wmLogger,
	}
	router.AddMiddleware(retry.Middleware)

	return b, nil
}

// PublishClick implements clicks.Publisher.
func (b *Bus) PublishClick(ctx context.Context, e *clicks.Event) error {
	payload, err := EncodeClick(e)
	if err != nil {
		return err
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(context.WithoutCancel(ctx))
	if cid := logging.CorrelationIDFromContext(ctx); cid != "" {
		msg.Metadata.Set("correlation_id", cid)
	}

	if err := b.pubsub.Publish(TopicClicksRecorded, msg); err != nil {
		return fmt.Errorf("publish %s: %w", TopicClicksRecorded, err)
	}
	metrics.EventsPublished.WithLabelValues(TopicClicksRecorded).Inc()
	return nil
}

// HandleClicks registers fn under name for every recorded click.
func (b *Bus) HandleClicks(name string, fn ClickHandler) {
	b.router.AddConsumerHandler(name, TopicClicksRecorded, b.pubsub, func(msg *message.Message) error {
		c, err := DecodeClick(msg.Payload)
		if err != nil {
			// Redelivery cannot fix a bad payload.
			metrics.EventsHandled.WithLabelValues(name, "malformed").Inc()
			b.logger.Warn().Err(err).Str("handler", name).Str("message_uuid", msg.UUID).Msg("Dropping malformed event")
			return nil
		}
		ctx := msg.Context()
		if cid := msg.Metadata.Get("correlation_id"); cid != "" {
			ctx = logging.ContextWithCorrelationID(ctx, cid)
		}
		if err := fn(ctx, c); err != nil {
			metrics.EventsHandled.WithLabelValues(name, "error").Inc()
			return fmt.Errorf("%s: %w", name, err)
		}
		metrics.EventsHandled.WithLabelValues(name, "ok").Inc()
		return nil
	})
}

// ackExhausted acknowledges messages whose handler failed for good, since
// gochannel would otherwise redeliver them forever.
func (b *Bus) ackExhausted(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		out, err := h(msg)
		if err != nil {
			b.logger.Error().Err(err).
				Str("handler", message.HandlerNameFromCtx(msg.Context())).
				Str("message_uuid", msg.UUID).
				Str("correlation_id", msg.Metadata.Get("correlation_id")).
				Msg("Event handler failed after retries")
			return nil, nil
		}
		return out, nil
	}
}

// Run starts dispatching and blocks until ctx is done or Close is called.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running is closed once the router is dispatching.
func (b *Bus) Running() <-chan struct{} {
	return b.router.Running()
}

// IsRunning reports whether the router is dispatching.
func (b *Bus) IsRunning() bool {
	return b.router.IsRunning()
}

// Close stops the router, waiting up to CloseTimeout for in-flight handlers,
// then closes the pub/sub.
func (b *Bus) Close() error {
	routerErr := b.router.Close()
	pubsubErr := b.pubsub.Close()
	return errors.Join(routerErr, pubsubErr)
}
