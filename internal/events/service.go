// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"github.com/wayfarelabs/wayfare/internal/config"
	"github.com/wayfarelabs/wayfare/internal/metrics"
)

// CacheInvalidator is what the consumer needs from the recommendation
// engine: throw away cached matrices so the next request rebuilds.
type CacheInvalidator interface {
	InvalidateCache()
}

// Service owns the event bus lifecycle: the optional embedded server,
// the stream, the publisher, and the consumer that invalidates the
// engine cache on interaction changes.
type Service struct {
	cfg         config.EventsConfig
	embedded    *EmbeddedServer
	conn        *natsgo.Conn
	publisher   *Publisher
	subscriber  *Subscriber
	router      *message.Router
	logger      zerolog.Logger
	invalidator CacheInvalidator
}

// NewService wires up the bus against the configured NATS server,
// starting an embedded one first when requested. The interaction
// stream is created or updated before any publisher or subscriber
// connects.
func NewService(cfg config.EventsConfig, invalidator CacheInvalidator, logger zerolog.Logger) (*Service, error) {
	s := &Service{
		cfg:         cfg,
		logger:      logger,
		invalidator: invalidator,
	}

	url := cfg.URL
	if cfg.EmbeddedServer {
		serverCfg := DefaultServerConfig()
		serverCfg.StoreDir = cfg.StoreDir
		if cfg.MaxMemory > 0 {
			serverCfg.MaxMemory = cfg.MaxMemory
		}
		if cfg.MaxStore > 0 {
			serverCfg.MaxStore = cfg.MaxStore
		}

		embedded, err := NewEmbeddedServer(serverCfg)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		s.embedded = embedded
		url = embedded.ClientURL()
		logger.Info().Str("url", url).Msg("embedded NATS server started")
	}

	if err := s.initStream(url); err != nil {
		s.shutdownPartial()
		return nil, err
	}

	wmLogger := NewWatermillLogger(logger)

	publisher, err := NewPublisher(DefaultPublisherConfig(url), wmLogger)
	if err != nil {
		s.shutdownPartial()
		return nil, err
	}
	s.publisher = publisher

	subscriber, err := NewSubscriber(DefaultSubscriberConfig(url), wmLogger)
	if err != nil {
		s.shutdownPartial()
		return nil, err
	}
	s.subscriber = subscriber

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: 30 * time.Second,
	}, wmLogger)
	if err != nil {
		s.shutdownPartial()
		return nil, fmt.Errorf("create message router: %w", err)
	}
	router.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: time.Second,
			MaxInterval:     30 * time.Second,
			Multiplier:      2.0,
			Logger:          wmLogger,
		}.Middleware,
	)
	router.AddNoPublisherHandler("invalidate-on-create",
		TopicInteractionCreated, subscriber,
		newInvalidationHandler(TopicInteractionCreated, invalidator, logger))
	router.AddNoPublisherHandler("invalidate-on-delete",
		TopicInteractionDeleted, subscriber,
		newInvalidationHandler(TopicInteractionDeleted, invalidator, logger))
	s.router = router

	return s, nil
}

// initStream connects briefly to create or update the stream.
func (s *Service) initStream(url string) error {
	conn, err := natsgo.Connect(url,
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.Timeout(10*time.Second))
	if err != nil {
		return fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	s.conn = conn

	js, err := jetstream.New(conn)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}

	initializer, err := NewStreamInitializer(js, DefaultStreamConfig(s.cfg.StreamRetentionDays))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := initializer.EnsureStream(ctx); err != nil {
		return err
	}

	s.logger.Info().
		Str("stream", StreamName).
		Int("retention_days", s.cfg.StreamRetentionDays).
		Msg("interaction event stream ready")
	return nil
}

// newInvalidationHandler returns a handler that drops the engine cache
// whenever an interaction event arrives. A payload that fails to
// decode is logged and acked; redelivering it cannot make it parse.
func newInvalidationHandler(topic string, invalidator CacheInvalidator, logger zerolog.Logger) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		metrics.EventsConsumed.WithLabelValues(topic).Inc()

		ev, err := DeserializeEvent(msg.Payload)
		if err != nil {
			logger.Warn().Err(err).
				Str("topic", topic).
				Str("message_id", msg.UUID).
				Msg("dropping undecodable interaction event")
			return nil
		}

		logger.Debug().
			Str("topic", topic).
			Str("event_id", ev.EventID).
			Int64("user_id", ev.UserID).
			Int64("tour_id", ev.TourID).
			Msg("invalidating recommendation cache")
		invalidator.InvalidateCache()
		return nil
	}
}

// PublishInteractionCreated emits a created event for an interaction.
// Failures are returned to the caller, who treats delivery as best
// effort.
func (s *Service) PublishInteractionCreated(ctx context.Context, ev *InteractionEvent) error {
	return s.publisher.PublishEvent(ctx, TopicInteractionCreated, ev)
}

// PublishInteractionDeleted emits a deleted event for a deletion scope.
func (s *Service) PublishInteractionDeleted(ctx context.Context, ev *InteractionEvent) error {
	return s.publisher.PublishEvent(ctx, TopicInteractionDeleted, ev)
}

// Serve runs the consumer router until the context is canceled. The
// signature matches suture.Service so the bus slots into the
// supervision tree.
func (s *Service) Serve(ctx context.Context) error {
	return s.router.Run(ctx)
}

// Healthy reports whether the bus can reach its NATS server.
func (s *Service) Healthy() bool {
	if s.conn == nil || !s.conn.IsConnected() {
		return false
	}
	if s.embedded != nil && !s.embedded.IsRunning() {
		return false
	}
	return true
}

// Close tears the bus down in reverse dependency order.
func (s *Service) Close() error {
	var firstErr error

	if s.router != nil {
		if err := s.router.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close router: %w", err)
		}
	}
	if s.subscriber != nil {
		if err := s.subscriber.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close subscriber: %w", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close publisher: %w", err)
		}
	}
	s.shutdownPartial()
	return firstErr
}

func (s *Service) shutdownPartial() {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	if s.embedded != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.embedded.Shutdown(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("embedded NATS shutdown")
		}
		s.embedded = nil
	}
}
