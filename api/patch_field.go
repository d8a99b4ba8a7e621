package api

import (
	"bytes"
	"encoding/json"
)

var jsonNull = []byte("null")

// patchField records whether a key was present in a PATCH body. An explicit
// null counts as present with the zero value, so it is validated instead of
// being mistaken for an omitted key.
type patchField[T any] struct {
	Present bool
	Value   T
}

func (f *patchField[T]) UnmarshalJSON(data []byte) error {
	f.Present = true
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		var zero T
		f.Value = zero
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// Ptr returns nil for an absent key
func (f patchField[T]) Ptr() *T {
	if !f.Present {
		return nil
	}
	value := f.Value
	return &value
}
