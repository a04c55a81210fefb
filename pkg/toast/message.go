package toast

import "time"

// Kind is the severity of a message.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSuccess, KindError, KindWarning, KindInfo:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// DefaultLifetime is how long a message stays when no lifetime is given.
const DefaultLifetime = 5 * time.Second

// Message is one transient notification. Messages are values and never
// change after creation; removal from the queue is their only transition.
type Message struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Kind      Kind          `json:"kind"`
	Lifetime  time.Duration `json:"lifetime"` // zero or negative: stays until dismissed
	CreatedAt time.Time     `json:"created_at"`
}

// Persistent reports whether the message waits for a manual dismiss.
func (m Message) Persistent() bool {
	return m.Lifetime <= 0
}

// ExpiresAt returns when the message is removed automatically, or the zero
// time for persistent messages.
func (m Message) ExpiresAt() time.Time {
	if m.Persistent() {
		return time.Time{}
	}
	return m.CreatedAt.Add(m.Lifetime)
}
