// Package importer loads rows exported from the hosted backend.
//
// The backend embeds joined rows either as a single object or as an array
// depending on how the relation was declared. OneOrMany folds both shapes
// into one optional value before rows reach the domain model.
package importer

import (
	"bytes"
	"encoding/json"
)

// OneOrMany decodes a join that may arrive as an object, an array or null.
// An array yields its first element; an empty array or null yields nil.
type OneOrMany[T any] struct {
	Value *T
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	o.Value = nil
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '[' {
		var many []T
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		if len(many) > 0 {
			o.Value = &many[0]
		}
		return nil
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	o.Value = &one
	return nil
}

// MarshalJSON writes the canonical single-value shape.
func (o OneOrMany[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Get returns the value or nil.
func (o OneOrMany[T]) Get() *T {
	return o.Value
}
