// Package bus connects engine components without direct references.
//
// Signal and data channels fan out to every subscriber, in subscription order.
// Pull channels are request/response and have a single responder. Everything
// runs synchronously on the caller's goroutine: Push and Respond return only
// after every callback has returned. The bus is meant to be owned by the frame
// loop and is not safe for concurrent use.
package bus

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Message is what a Handler receives.
type Message struct {
	Channel    Channel
	Subscriber string // source name of the subscription being invoked
	Payload    any
}

// Handler reacts to a signal or data notification. A non-nil error aborts the
// push and is returned to the pusher.
type Handler func(Message) error

// Responder answers a pull request.
type Responder func() (any, error)

// Stats are running totals since the bus was created.
type Stats struct {
	Pushes     uint64
	Responds   uint64
	Subscribed uint64
	Disposed   uint64
}

// Option configures a Bus.
type Option func(*Bus)

// WithDisposeHook registers fn to be called on every Subscription.Dispose
// call, including repeated calls on an already disposed subscription.
func WithDisposeHook(fn func(*Subscription)) Option {
	return func(b *Bus) { b.onDispose = fn }
}

type Bus struct {
	subs       map[uuid.UUID][]*Subscription
	responders map[uuid.UUID]*Subscription
	onDispose  func(*Subscription)
	stats      Stats
}

func New(opts ...Option) *Bus {
	b := &Bus{
		subs:       make(map[uuid.UUID][]*Subscription),
		responders: make(map[uuid.UUID]*Subscription),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers h for a signal or data channel.
func (b *Bus) Subscribe(ch Channel, source string, h Handler) (*Subscription, error) {
	if h == nil {
		return nil, &ConfigurationError{Component: source, Err: ErrNilHandler}
	}
	if ch.Kind == KindPull {
		return nil, &ConfigurationError{
			Component: source,
			Err:       fmt.Errorf("%w: %s is a pull channel, use SubscribePull", ErrWrongChannelKind, ch),
		}
	}
	s := &Subscription{bus: b, channel: ch, source: source, handler: h}
	b.subs[ch.ID] = append(b.subs[ch.ID], s)
	b.stats.Subscribed++
	return s, nil
}

// SubscribePull registers r as the responder of a pull channel. A pull channel
// holds at most one live responder.
func (b *Bus) SubscribePull(ch Channel, source string, r Responder) (*Subscription, error) {
	if r == nil {
		return nil, &ConfigurationError{Component: source, Err: ErrNilHandler}
	}
	if ch.Kind != KindPull {
		return nil, &ConfigurationError{
			Component: source,
			Err:       fmt.Errorf("%w: %s is a %s channel", ErrWrongChannelKind, ch, ch.Kind),
		}
	}
	if cur, ok := b.responders[ch.ID]; ok {
		return nil, &ConfigurationError{
			Component: source,
			Err:       fmt.Errorf("%w: %s is answered by %q", ErrDuplicateResponder, ch, cur.source),
		}
	}
	s := &Subscription{bus: b, channel: ch, source: source, responder: r}
	b.responders[ch.ID] = s
	b.stats.Subscribed++
	return s, nil
}

// Signal pushes a payload-less notification.
func (b *Bus) Signal(ch Channel) error { return b.Push(ch, nil) }

// Push invokes every subscriber of ch that is live when Push starts. Handlers
// may subscribe or dispose freely; new subscriptions are not invoked by this
// push and subscriptions disposed mid-push are skipped.
func (b *Bus) Push(ch Channel, payload any) error {
	if ch.Kind == KindPull {
		return &ProtocolError{Channel: ch, Err: fmt.Errorf("%w: cannot push to a pull channel", ErrWrongChannelKind)}
	}
	b.stats.Pushes++

	live := b.subs[ch.ID]
	if len(live) == 0 {
		return nil
	}
	snapshot := slices.Clone(live)
	for _, s := range snapshot {
		if s.disposed {
			continue
		}
		if err := s.handler(Message{Channel: ch, Subscriber: s.source, Payload: payload}); err != nil {
			return err
		}
	}
	return nil
}

// Respond asks the responder of ch for its current value.
func (b *Bus) Respond(ch Channel) (any, error) {
	if ch.Kind != KindPull {
		return nil, &ProtocolError{Channel: ch, Err: fmt.Errorf("%w: %s channel has no responder", ErrWrongChannelKind, ch.Kind)}
	}
	s, ok := b.responders[ch.ID]
	if !ok {
		return nil, &ProtocolError{Channel: ch, Err: ErrNoResponder}
	}
	b.stats.Responds++
	return s.responder()
}

// SubscriberCount reports the live subscriptions on ch.
func (b *Bus) SubscriberCount(ch Channel) int {
	if ch.Kind == KindPull {
		if _, ok := b.responders[ch.ID]; ok {
			return 1
		}
		return 0
	}
	return len(b.subs[ch.ID])
}

func (b *Bus) Stats() Stats { return b.stats }

func (b *Bus) remove(s *Subscription) {
	if s.channel.Kind == KindPull {
		if b.responders[s.channel.ID] == s {
			delete(b.responders, s.channel.ID)
		}
	} else {
		list := b.subs[s.channel.ID]
		if i := slices.Index(list, s); i >= 0 {
			// Push iterates over a clone, so shrinking in place is safe.
			list = slices.Delete(list, i, i+1)
		}
		if len(list) == 0 {
			delete(b.subs, s.channel.ID)
		} else {
			b.subs[s.channel.ID] = list
		}
	}
	b.stats.Disposed++
}

// Subscription is the handle returned by Subscribe and SubscribePull.
type Subscription struct {
	bus       *Bus
	channel   Channel
	source    string
	handler   Handler
	responder Responder
	disposed  bool
}

func (s *Subscription) Channel() Channel { return s.channel }
func (s *Subscription) Source() string   { return s.source }
func (s *Subscription) Disposed() bool   { return s.disposed }

// Dispose removes the subscription from future notifications. Calling it more
// than once has no further effect.
func (s *Subscription) Dispose() {
	if s == nil {
		return
	}
	if s.bus.onDispose != nil {
		s.bus.onDispose(s)
	}
	if s.disposed {
		return
	}
	s.disposed = true
	s.bus.remove(s)
}

// OnSignal adapts a payload-less callback into a Handler.
func OnSignal(fn func() error) Handler {
	return func(Message) error { return fn() }
}

// OnData adapts a typed callback into a Handler. A payload that is not a T
// yields a ProtocolError naming the subscriber and channel.
func OnData[T any](fn func(T) error) Handler {
	return func(m Message) error {
		v, ok := m.Payload.(T)
		if !ok {
			var want T
			return &ProtocolError{
				Source:  m.Subscriber,
				Channel: m.Channel,
				Err:     fmt.Errorf("%w: want %T, got %T", ErrPayloadType, want, m.Payload),
			}
		}
		return fn(v)
	}
}

// Pull performs Respond on ch and decodes the answer as a T.
func Pull[T any](b *Bus, ch Channel) (T, error) {
	var zero T
	v, err := b.Respond(ch)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		src := ""
		if s, found := b.responders[ch.ID]; found {
			src = s.source
		}
		return zero, &ProtocolError{
			Source:  src,
			Channel: ch,
			Err:     fmt.Errorf("%w: want %T, got %T", ErrPayloadType, zero, v),
		}
	}
	return out, nil
}
