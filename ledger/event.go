package ledger

import (
	"encoding/gob"
	"encoding/json"

	"github.com/google/uuid"
)

// Payload is the typed body of an event.
type Payload interface {
	EventName() string
}

// Event is one entry of the global, append-only event log.
type Event struct {
	Seq     uint64    // Position in the log, starting at 1
	ID      uuid.UUID // Unique id for at-least-once consumers
	Height  uint64    // Ledger height of the committing transaction
	Emitter Address   // Contract that emitted the event
	Payload Payload
}

// Name returns the payload's event name.
func (e Event) Name() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.EventName()
}

// MarshalJSON renders the event with its name alongside the payload.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Seq     uint64    `json:"seq"`
		ID      uuid.UUID `json:"id"`
		Height  uint64    `json:"height"`
		Emitter Address   `json:"emitter"`
		Name    string    `json:"name"`
		Payload Payload   `json:"payload"`
	}{e.Seq, e.ID, e.Height, e.Emitter, e.Name(), e.Payload})
}

// RegisterPayload makes a payload type persistable in the event log.
func RegisterPayload(p Payload) { gob.Register(p) }

// RegisterContract makes a contract type persistable in world state.
func RegisterContract(c Contract) { gob.Register(c) }

// Funded is emitted when native units are minted into an account at genesis.
type Funded struct {
	Account Address `json:"account"`
	Amount  uint64  `json:"amount"`
}

func (Funded) EventName() string { return "Funded" }

func init() {
	RegisterPayload(Funded{})
}
