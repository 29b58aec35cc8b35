package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope mirrors { success: bool, data: <payload>|null, error?: string }.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// DecodeEnvelope validates the envelope and returns its non-null data payload.
func DecodeEnvelope(body []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Success == nil {
		return nil, fmt.Errorf("%w: missing success flag", ErrMalformed)
	}
	if !*env.Success {
		if env.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrNotSuccessful, env.Error)
		}
		return nil, ErrNotSuccessful
	}
	if isNull(env.Data) {
		return nil, ErrNoData
	}
	return env.Data, nil
}

// DecodeCollection validates the envelope and returns the entries of its
// array payload. When key is set the payload must be an object whose key
// field holds the array.
func DecodeCollection(body []byte, key string) ([]json.RawMessage, error) {
	data, err := DecodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	if key != "" {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, fmt.Errorf("%w: want object with %q", ErrUnexpectedData, key)
		}
		inner, ok := obj[key]
		if !ok || isNull(inner) {
			return nil, fmt.Errorf("%w: missing %q", ErrNoData, key)
		}
		data = inner
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: want array", ErrUnexpectedData)
	}
	return items, nil
}

// DecodeObject validates the envelope and returns its object payload.
func DecodeObject(body []byte) (map[string]json.RawMessage, error) {
	data, err := DecodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("%w: want object", ErrUnexpectedData)
	}
	return obj, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
