// Package telemetry records product analytics events through an injected sink.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Event names recorded by the chat and request components
const (
	EventChatMessageSent  = "chat_message_sent"
	EventChatLogin        = "chat_login"
	EventChatLogout       = "chat_logout"
	EventRequestSubmitted = "music_request_submitted"
	EventRequestStatus    = "music_request_status_changed"
	EventContactSent      = "contact_form_sent"
)

// Event names the front-end may forward
const (
	EventAudioPlay         = "audio_play"
	EventPlayerInteraction = "player_interaction"
	EventSearch            = "search"
	EventPageView          = "page_view"
	EventError             = "error"
	EventNewsletterSignup  = "newsletter_signup"
)

var clientEvents = map[string]bool{
	EventAudioPlay:         true,
	EventPlayerInteraction: true,
	EventSearch:            true,
	EventPageView:          true,
	EventError:             true,
	EventNewsletterSignup:  true,
}

// IsClientEvent reports whether name may be recorded on behalf of the front-end.
// Server side events are excluded so they cannot be inflated from outside.
func IsClientEvent(name string) bool {
	return clientEvents[name]
}

// Sink receives analytics events
type Sink interface {
	RecordEvent(name string, params map[string]string)
}

// Noop discards every event
type Noop struct{}

// RecordEvent does nothing
func (Noop) RecordEvent(string, map[string]string) {}

// PrometheusSink counts events by name and logs their parameters at debug level
type PrometheusSink struct {
	events *prometheus.CounterVec
}

// NewPrometheusSink registers the event counter with reg
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "radio",
		Name:      "telemetry_events_total",
		Help:      "Analytics events recorded, by event name.",
	}, []string{"event"})
	if err := reg.Register(events); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			events = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	return &PrometheusSink{events: events}, nil
}

// RecordEvent increments the counter for name
func (p *PrometheusSink) RecordEvent(name string, params map[string]string) {
	p.events.WithLabelValues(name).Inc()
	zap.S().Debugw("telemetry event", "event", name, "params", params)
}

// Event is a single recorded event
type Event struct {
	Name   string
	Params map[string]string
}

// Recorder keeps every event in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// RecordEvent appends the event
func (r *Recorder) RecordEvent(name string, params map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Name: name, Params: params})
}

// Events returns a copy of what has been recorded so far
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
