package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The API is not consistent about response envelopes: single entities come
// as {"data": {...}}, collections as a bare array, as {"data": [...]}, or as
// the paginated {"data": {"data": [...], "current_page": n, "total": n}}.
// Everything is normalized here so stores never branch on envelope shape.

// Collection is the canonical list shape.
type Collection[T any] struct {
	Items []T
	Page  int
	Total int
}

// DecodeEntity unwraps {"data": T}. A body without the wrapper is decoded
// directly.
func DecodeEntity[T any](body []byte) (T, error) {
	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	var out T
	if err := json.Unmarshal(body, &wrapped); err == nil && len(wrapped.Data) > 0 {
		if err := json.Unmarshal(wrapped.Data, &out); err != nil {
			return out, fmt.Errorf("decode entity: %w", err)
		}
		return out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decode entity: %w", err)
	}
	return out, nil
}

// DecodeCollection normalizes all observed list shapes into a Collection.
func DecodeCollection[T any](body []byte) (Collection[T], error) {
	var out Collection[T]

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &out.Items); err != nil {
			return out, fmt.Errorf("decode collection: %w", err)
		}
		return out, nil
	}

	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return out, fmt.Errorf("decode collection: %w", err)
	}
	inner := bytes.TrimSpace(wrapped.Data)
	if len(inner) == 0 || string(inner) == "null" {
		return out, nil
	}
	if inner[0] == '[' {
		if err := json.Unmarshal(inner, &out.Items); err != nil {
			return out, fmt.Errorf("decode collection: %w", err)
		}
		return out, nil
	}

	// Paginated: {"data": {"data": [...], "current_page": n, "total": n}}
	var paged struct {
		Data        []T `json:"data"`
		CurrentPage int `json:"current_page"`
		Total       int `json:"total"`
	}
	if err := json.Unmarshal(inner, &paged); err != nil {
		return out, fmt.Errorf("decode collection: %w", err)
	}
	out.Items = paged.Data
	out.Page = paged.CurrentPage
	out.Total = paged.Total
	return out, nil
}
