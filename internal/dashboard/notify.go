package dashboard

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	notificationLimit = 20
	subscriberBuffer  = 16
)

var messages = map[weather.Kind]string{
	weather.KindInvalidInput:        "Введите корректный город",
	weather.KindNotFound:            "Город не найден",
	weather.KindUpstreamUnavailable: "Ошибка получения погоды",
	weather.KindGeolocationDenied:   "Не удалось получить местоположение. Проверьте разрешения.",
	weather.KindGeolocationTimeout:  "Не удалось получить местоположение",
	weather.KindPersistence:         "Не удалось сохранить изменения",
	weather.KindInternal:            "Внутренняя ошибка",
}

// Notification is a user-visible error report.
type Notification struct {
	ID      string       `json:"id"`
	Kind    weather.Kind `json:"kind"`
	Message string       `json:"message"`
	Detail  string       `json:"detail"`
	At      time.Time    `json:"at"`
}

// EventType distinguishes state changes from notifications.
type EventType string

const (
	EventState        EventType = "state"
	EventNotification EventType = "notification"
)

// Event is delivered to subscribers after every state change or notification.
type Event struct {
	Type         EventType     `json:"type"`
	Notification *Notification `json:"notification,omitempty"`
}

// notifier keeps the most recent notifications and fans events out to
// subscribers. Slow subscribers miss events rather than block actions.
type notifier struct {
	mu     sync.Mutex
	recent []Notification
	subs   map[int]chan Event
	nextID int
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[int]chan Event)}
}

func (n *notifier) report(err error) Notification {
	kind := weather.KindOf(err)
	note := Notification{
		ID:      uuid.NewString(),
		Kind:    kind,
		Message: messages[kind],
		Detail:  err.Error(),
		At:      time.Now().UTC(),
	}

	n.mu.Lock()
	n.recent = append(n.recent, note)
	if over := len(n.recent) - notificationLimit; over > 0 {
		n.recent = append([]Notification(nil), n.recent[over:]...)
	}
	n.mu.Unlock()

	n.publish(Event{Type: EventNotification, Notification: &note})
	return note
}

func (n *notifier) list() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.recent))
	copy(out, n.recent)
	return out
}

func (n *notifier) publish(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (n *notifier) subscribe() (<-chan Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan Event, subscriberBuffer)
	n.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
			close(ch)
		})
	}
}
