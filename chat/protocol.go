// Package chat implements the chat-level protocol carried inside LoRa
// payloads: JSON envelopes for messages and acknowledgments, plus
// tracking of pending acks and receive-side deduplication.
package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope types.
const (
	TypeChat = "chat"
	TypeAck  = "ack"
)

// ErrInvalid is returned by Parse for payloads that are not chat
// envelopes. Such payloads come from foreign traffic on the same
// channel and are simply skipped by consumers.
var ErrInvalid = errors.New("not a chat envelope")

// Envelope is the JSON message exchanged between chat peers. Chat
// envelopes carry ID and Content; acks carry AckID referencing the
// acknowledged message. The wire layout matches the original field
// names so mixed-version peers interoperate.
type Envelope struct {
	Type      string  `json:"type"`
	ID        string  `json:"id,omitempty"`
	AckID     string  `json:"ack_id,omitempty"`
	Username  string  `json:"username"`
	Content   string  `json:"content,omitempty"`
	Timestamp float64 `json:"timestamp"`
}

// NewMessage builds a chat envelope with a fresh message id. Ids are
// truncated to 8 characters to keep frames short on the air.
func NewMessage(username, content string) Envelope {
	return Envelope{
		Type:      TypeChat,
		ID:        uuid.NewString()[:8],
		Username:  username,
		Content:   content,
		Timestamp: now(),
	}
}

// NewAck builds an acknowledgment for the given message id.
func NewAck(msgID, username string) Envelope {
	return Envelope{
		Type:      TypeAck,
		AckID:     msgID,
		Username:  username,
		Timestamp: now(),
	}
}

// Encode serializes the envelope for transmission.
func (e Envelope) Encode() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("encode envelope: %w", err)
	}
	return string(b), nil
}

// Parse decodes an inbound payload. Payloads that are not JSON objects
// or lack a known type return ErrInvalid.
func Parse(raw string) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if e.Type != TypeChat && e.Type != TypeAck {
		return Envelope{}, fmt.Errorf("%w: unknown type %q", ErrInvalid, e.Type)
	}
	return e, nil
}

// Time converts the envelope timestamp to a time.Time.
func (e Envelope) Time() time.Time {
	sec := int64(e.Timestamp)
	nsec := int64((e.Timestamp - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// now returns the current time as float seconds, the timestamp format
// the original peers use.
func now() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
