// Package notify delivers transient dashboard notifications (toasts). Publishing is
// fire-and-forget: a slow or absent subscriber never blocks the publisher.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Level string

const (
	LevelInfo     Level = "info"
	LevelSuccess  Level = "success"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

type Notification struct {
	ID        string    `json:"id"`
	ViewID    string    `json:"view_id"`
	Section   string    `json:"section,omitempty"`
	Level     Level     `json:"level"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher is the side of the bus producers depend on.
type Publisher interface {
	Publish(n Notification)
}

// Holder is implemented by publishers that can keep a topic's notifications until its
// first subscriber arrives.
type Holder interface {
	Hold(topic string)
}

const defaultBuffer = 32

// Bus fans notifications out to subscribers of a topic, usually a view id.
type Bus struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
	// held keeps up to defaultBuffer notifications per topic that has no subscriber yet.
	held   map[string][]Notification
	logger *zap.Logger
}

func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		topics: make(map[string]map[*Subscription]struct{}),
		held:   make(map[string][]Notification),
		logger: logger,
	}
}

// Hold makes the bus keep notifications for topic until the first Subscribe, so toasts
// published while a client is still connecting are not lost. CloseTopic releases them.
func (b *Bus) Hold(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.topics[topic]) > 0 {
		return
	}
	if _, ok := b.held[topic]; !ok {
		b.held[topic] = nil
	}
}

type Subscription struct {
	C     <-chan Notification
	ch    chan Notification
	topic string
	bus   *Bus
	once  sync.Once
}

// Subscribe returns a subscription receiving every later notification for topic. The
// first subscriber of a held topic also receives what was kept for it.
func (b *Bus) Subscribe(topic string) *Subscription {
	ch := make(chan Notification, defaultBuffer)
	sub := &Subscription{C: ch, ch: ch, topic: topic, bus: b}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[*Subscription]struct{})
	}
	b.topics[topic][sub] = struct{}{}

	if held, ok := b.held[topic]; ok {
		delete(b.held, topic)
		for _, n := range held {
			ch <- n
		}
	}
	return sub
}

// Close detaches the subscription and closes C. Safe to call more than once.
func (s *Subscription) Close() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	s.closeLocked()
}

func (s *Subscription) closeLocked() {
	s.once.Do(func() {
		if subs := s.bus.topics[s.topic]; subs != nil {
			delete(subs, s)
			if len(subs) == 0 {
				delete(s.bus.topics, s.topic)
			}
		}
		close(s.ch)
	})
}

// CloseTopic closes every subscription of topic and drops anything held for it.
func (b *Bus) CloseTopic(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.held, topic)
	for sub := range b.topics[topic] {
		sub.closeLocked()
	}
}

// Publish stamps n and hands it to every subscriber of n.ViewID that has room. A held
// topic without subscribers keeps n instead.
func (b *Bus) Publish(n Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if held, ok := b.held[n.ViewID]; ok {
		if len(held) < defaultBuffer {
			b.held[n.ViewID] = append(held, n)
		} else {
			b.logger.Warn("dropping held notification",
				zap.String("view_id", n.ViewID), zap.String("title", n.Title))
		}
		return
	}
	for sub := range b.topics[n.ViewID] {
		select {
		case sub.ch <- n:
		default:
			b.logger.Warn("dropping notification for slow subscriber",
				zap.String("view_id", n.ViewID), zap.String("title", n.Title))
		}
	}
	b.logger.Debug("notification published",
		zap.String("view_id", n.ViewID), zap.String("section", n.Section), zap.String("level", string(n.Level)))
}

// Subscribers returns the number of open subscriptions for topic.
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}
