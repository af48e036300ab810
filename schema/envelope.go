package schema

import (
	"encoding/json"
	"strings"
)

// Envelope is the outbound wire payload. Message may contain '\n'.
type Envelope struct {
	Nick    string `json:"nick"`
	Message string `json:"message"`
}

// Encode renders the envelope as a JSON text frame.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEnvelope parses a text frame. ok is false unless the frame is a JSON
// object carrying both fields; relays fall back to treating the frame as raw text.
func DecodeEnvelope(data []byte) (Envelope, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Envelope{}, false
	}
	nickRaw, hasNick := raw["nick"]
	msgRaw, hasMsg := raw["message"]
	if !hasNick || !hasMsg {
		return Envelope{}, false
	}
	var env Envelope
	if err := json.Unmarshal(nickRaw, &env.Nick); err != nil {
		return Envelope{}, false
	}
	if err := json.Unmarshal(msgRaw, &env.Message); err != nil {
		return Envelope{}, false
	}
	env.Nick = strings.TrimSpace(env.Nick)
	return env, true
}
