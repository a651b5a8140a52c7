package amqp

import (
	"encoding/json"
	"time"

	"fintrack/internal/store"
)

// ChangeMessage is the lightweight broker message for one committed
// mutation. It carries identifiers only; the worker fetches the full row
// from the database, so a stale message can never export stale data.
type ChangeMessage struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	Owner     string    `json:"owner"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage wraps a store change event with a timestamp.
func NewChangeMessage(ev store.ChangeEvent) *ChangeMessage {
	return &ChangeMessage{
		Entity:    ev.Entity,
		Action:    ev.Action,
		Owner:     ev.Owner,
		ID:        ev.ID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
