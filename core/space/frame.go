package space

import (
	"encoding/json"
	"fmt"
)

// frame is the JSON wire envelope. Classification rules:
//   - targetGuid+messageType present: inbound request (notify if requestId
//     is absent)
//   - otherwise: response, error response when error is non-empty
//
// Payload and Result are kept raw so values pass through untouched; an
// absent value decodes to nil, which is how undefined collapses to null
// across the wire.
type frame struct {
	RequestID   uint64          `json:"requestId,omitempty"`
	TargetGUID  string          `json:"targetGuid,omitempty"`
	MessageType string          `json:"messageType,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
}

func (f frame) isRequest() bool { return f.TargetGUID != "" && f.MessageType != "" }

func encodeFrame(f frame) (string, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encode frame: %w", err)
	}
	return string(b), nil
}

func decodeFrame(text string) (frame, error) {
	var f frame
	if err := json.Unmarshal([]byte(text), &f); err != nil {
		return frame{}, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}

// encodeValue marshals a payload or result value. nil stays absent on the
// wire.
func encodeValue(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return b, nil
}

// decodeValue unmarshals a raw payload or result. Absent and null are
// indistinguishable once a value has crossed a channel: both decode to nil.
func decodeValue(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return v, nil
}
