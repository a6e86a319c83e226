package messages

import (
	"encoding/json"
	"testing"
)

func TestSerializeDeserializeMessage(t *testing.T) {
	payload, err := json.Marshal(&ClientFlip{Row: 2, Col: 3})
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	m := &Message{
		ClientID: 42,
		Type:     MessageTypeClientFlip,
		Payload:  payload,
	}

	b, err := SerializeMessage(m)
	if err != nil {
		t.Fatalf("SerializeMessage() error = %v", err)
	}

	got, err := DeserializeMessage(b)
	if err != nil {
		t.Fatalf("DeserializeMessage() error = %v", err)
	}
	if got.ClientID != m.ClientID || got.Type != m.Type {
		t.Errorf("DeserializeMessage() = %v, want %v", got, m)
	}

	flip := &ClientFlip{}
	if err := json.Unmarshal(got.Payload, flip); err != nil {
		t.Fatalf("failed to unmarshal payload: %v", err)
	}
	if flip.Row != 2 || flip.Col != 3 {
		t.Errorf("payload = %v, want row 2 col 3", flip)
	}
}

func TestDeserializeMessage_NotCompressed(t *testing.T) {
	if _, err := DeserializeMessage([]byte("not a zstd frame")); err == nil {
		t.Error("DeserializeMessage() expected error for uncompressed input")
	}
}
