package dossier

import (
	"encoding/json"
	"fmt"
)

// Serialize renders a dossier as the canonical export document: two-space
// indented UTF-8 JSON with keys in declaration order, amounts at fixed
// two-decimal precision, and ISO-8601 timestamps. Serialization is
// idempotent: parsing the output and serializing again yields identical
// bytes.
func Serialize(d *Dossier) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize dossier: %w", err)
	}
	return data, nil
}

// Parse reads a serialized dossier back into the domain model.
func Parse(data []byte) (*Dossier, error) {
	var d Dossier
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse dossier: %w", err)
	}
	return &d, nil
}
