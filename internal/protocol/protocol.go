// Package protocol defines the websocket wire format: every frame is an
// Envelope whose Type selects one of the payload structs below. Payloads
// are decoded and validated at the boundary; core logic only ever sees
// typed values.
package protocol

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Envelope wraps every message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Marshal packs an event name and payload into a wire frame.
func Marshal(typ string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: typ, Data: data})
}

// Num is a number field tolerant of clients that send numeric strings.
// Anything unparseable decodes to zero; callers apply their own fallback.
type Num float64

func (n *Num) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Num(f)
	return nil
}
