// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package docstore

import (
	"encoding/json"
	"fmt"
	"time"
)

// timestampKey marks a JSON object that stands for a [Timestamp].
const timestampKey = "$timestamp"

// encodeFields serializes a field map to JSON, rewriting every [Timestamp]
// (and time.Time) into {"$timestamp": "<RFC3339Nano>"}.
func encodeFields(fields Fields) ([]byte, error) {
	payload, err := json.Marshal(encodeValue(fields))
	if err != nil {
		return nil, fmt.Errorf("docstore_encode_failed: %w", err)
	}
	return payload, nil
}

// decodeFields parses a JSON object produced by [encodeFields], restoring timestamps.
func decodeFields(payload []byte) (Fields, error) {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("docstore_decode_failed: %w", err)
	}

	fields := make(Fields, len(raw))
	for key, value := range raw {
		fields[key] = decodeValue(value)
	}
	return fields, nil
}

func encodeValue(value any) any {
	switch typed := value.(type) {
	case Timestamp:
		return map[string]any{timestampKey: typed.Time().Format(time.RFC3339Nano)}
	case *Timestamp:
		if typed == nil {
			return nil
		}
		return encodeValue(*typed)
	case time.Time:
		return encodeValue(NewTimestamp(typed))
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, nested := range typed {
			out[key] = encodeValue(nested)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, nested := range typed {
			out[i] = encodeValue(nested)
		}
		return out
	case []map[string]any:
		out := make([]any, len(typed))
		for i, nested := range typed {
			out[i] = encodeValue(nested)
		}
		return out
	default:
		return value
	}
}

func decodeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		if raw, isTimestamp := typed[timestampKey].(string); isTimestamp && len(typed) == 1 {
			if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
				return NewTimestamp(parsed)
			}
		}
		for key, nested := range typed {
			typed[key] = decodeValue(nested)
		}
		return typed
	case []any:
		for i, nested := range typed {
			typed[i] = decodeValue(nested)
		}
		return typed
	default:
		return value
	}
}

// cloneFields deep-copies a decoded field map so callers cannot alias stored state.
func cloneFields(fields Fields) Fields {
	out := make(Fields, len(fields))
	for key, value := range fields {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneFields(typed)
	case []any:
		out := make([]any, len(typed))
		for i, nested := range typed {
			out[i] = cloneValue(nested)
		}
		return out
	default:
		return value
	}
}
