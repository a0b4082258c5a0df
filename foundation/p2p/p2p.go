// Package p2p provides the gossip transport for the node: a libp2p
// host with a floodsub topic for exchanging chain state and mDNS for
// local peer discovery. The package owns delivery mechanics only; all
// chain decisions stay with the event loop consuming Events.
package p2p

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/p2p/discovery/mdns"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/minichain/minichain/foundation/metrics"
)

// Inbound events the loop hasn't drained yet queue here. The gossip
// readers never block on the consumer.
const eventBuffer = 64

// Config represents the settings required to join the gossip network.
type Config struct {
	Topic      string
	ListenAddr string
	RateLimit  rate.Limit
	RateBurst  int
	EvHandler  func(v string, args ...any)
}

// Service manages the libp2p host and the subscriptions feeding the
// node's event loop.
type Service struct {
	host        host.Host
	topic       *pubsub.Topic
	sub         *pubsub.Subscription
	topicEvents *pubsub.TopicEventHandler
	mdns        mdns.Service
	limiter     *rate.Limiter
	events      chan Event
	evHandler   func(v string, args ...any)
}

// New constructs a gossip service listening on the configured address
// and subscribed to the configured topic. The provided ctx bounds the
// lifetime of the pubsub router.
func New(ctx context.Context, cfg Config) (*Service, error) {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	h, err := libp2p.New(libp2p.ListenAddrStrings(cfg.ListenAddr))
	if err != nil {
		return nil, fmt.Errorf("create libp2p host: %w", err)
	}

	// Floodsub semantics: every message goes to every subscribed peer.
	ps, err := pubsub.NewFloodSub(ctx, h)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("create floodsub: %w", err)
	}

	topic, err := ps.Join(cfg.Topic)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("join topic %q: %w", cfg.Topic, err)
	}

	sub, err := topic.Subscribe()
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("subscribe topic %q: %w", cfg.Topic, err)
	}

	th, err := topic.EventHandler()
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("topic event handler: %w", err)
	}

	svc := Service{
		host:        h,
		topic:       topic,
		sub:         sub,
		topicEvents: th,
		limiter:     rate.NewLimiter(cfg.RateLimit, cfg.RateBurst),
		events:      make(chan Event, eventBuffer),
		evHandler:   ev,
	}

	svc.mdns = newDiscovery(&svc, cfg.Topic)

	return &svc, nil
}

// Run starts discovery and the subscription readers, blocking until ctx
// is canceled or a reader fails.
func (s *Service) Run(ctx context.Context) error {
	if err := s.mdns.Start(); err != nil {
		return fmt.Errorf("start mdns discovery: %w", err)
	}

	s.evHandler("p2p: run: host[%s] listening: %v", s.HostID(), s.host.Addrs())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readMessages(ctx) })
	g.Go(func() error { return s.readPeerEvents(ctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close releases the subscriptions and the host.
func (s *Service) Close() error {
	s.sub.Cancel()
	s.topicEvents.Cancel()
	if s.mdns != nil {
		s.mdns.Close()
	}
	s.topic.Close()
	return s.host.Close()
}

// HostID returns this node's transport identity.
func (s *Service) HostID() string {
	return s.host.ID().String()
}

// Publish broadcasts an envelope on the gossip topic. Addressing a
// specific peer is done through the envelope's Receiver field; delivery
// is still via the shared topic.
func (s *Service) Publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	return s.topic.Publish(ctx, data)
}

// Events returns the stream of inbound network events for the loop.
func (s *Service) Events() <-chan Event {
	return s.events
}

// =============================================================================

// readMessages drains the gossip subscription into the events channel.
// Undecodable or unaddressed messages are dropped here so the event
// loop only ever sees well formed envelopes.
func (s *Service) readMessages(ctx context.Context) error {
	for {
		msg, err := s.sub.Next(ctx)
		if err != nil {
			return err
		}

		// Our own broadcasts come back on the topic.
		if msg.ReceivedFrom == s.host.ID() {
			continue
		}

		if !s.limiter.Allow() {
			metrics.EnvelopesDropped.Inc()
			s.evHandler("p2p: readMessages: rate limit exceeded: message from peer[%s] dropped", msg.ReceivedFrom)
			continue
		}

		env, err := decodeEnvelope(msg.Data)
		if err != nil {
			metrics.EnvelopesRejected.Inc()
			s.evHandler("p2p: readMessages: rejected message from peer[%s]: %s", msg.ReceivedFrom, err)
			continue
		}

		// Respect point to point addressing on the shared topic.
		if env.Receiver != "" && env.Receiver != s.HostID() {
			continue
		}

		s.emit(Event{Kind: EventEnvelope, Peer: msg.ReceivedFrom.String(), Envelope: env})
	}
}

// readPeerEvents converts topic joins and leaves into peer seen and
// peer expired events for the loop.
func (s *Service) readPeerEvents(ctx context.Context) error {
	for {
		pe, err := s.topicEvents.NextPeerEvent(ctx)
		if err != nil {
			return err
		}

		switch pe.Type {
		case pubsub.PeerJoin:
			s.emit(Event{Kind: EventPeerSeen, Peer: pe.Peer.String()})
		case pubsub.PeerLeave:
			s.emit(Event{Kind: EventPeerExpired, Peer: pe.Peer.String()})
		}
	}
}

// emit delivers an event without ever blocking the reader goroutines.
func (s *Service) emit(evt Event) {
	select {
	case s.events <- evt:
	default:
		s.evHandler("p2p: emit: event buffer full: %s event dropped", evt.Kind)
	}
}
