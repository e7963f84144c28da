package remote

import (
	"sync"
	"time"

	"github.com/borgmon/alarm-clock/pkg/models"
	"github.com/borgmon/alarm-clock/pkg/ringer"
)

// Event types sent on the /events stream
const (
	EventRinging      = "ringing"
	EventResolved     = "resolved"
	EventNotification = "notification"
)

// Event is one message on the /events stream
type Event struct {
	Type       string        `json:"type"`
	Alarm      *models.Alarm `json:"alarm,omitempty"`
	Resolution string        `json:"resolution,omitempty"`
	Title      string        `json:"title,omitempty"`
	Message    string        `json:"message,omitempty"`
	At         time.Time     `json:"at"`
}

const subscriberBuffer = 16

// Broker fans ringer events out to stream subscribers. It implements
// ringer.Presenter so it can be attached to a Ringer directly.
type Broker struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
	now  func() time.Time
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[chan Event]struct{}),
		now:  time.Now,
	}
}

// Subscribe returns a channel receiving events until cancel is called
func (b *Broker) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber. Slow subscribers miss events.
func (b *Broker) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = b.now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *Broker) ShowTime(time.Time) {}

func (b *Broker) ShowRinging(alarm models.Alarm) {
	b.Publish(Event{Type: EventRinging, Alarm: &alarm})
}

func (b *Broker) HideRinging(alarm models.Alarm, res ringer.Resolution) {
	b.Publish(Event{Type: EventResolved, Alarm: &alarm, Resolution: res.String()})
}

func (b *Broker) Notify(title, message string) {
	b.Publish(Event{Type: EventNotification, Title: title, Message: message})
}

var _ ringer.Presenter = (*Broker)(nil)
