// Package docstore is the hosted document database the storefront
// delegates all persistence to: schemaless documents grouped into
// collections, with merge writes and de-duplicating array appends.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("docstore: document not found")

// Document is one stored document together with its collection-scoped id.
type Document struct {
	ID     string
	Fields map[string]any
}

// Store is implemented by the Mongo and Postgres backends and by the
// in-memory double used in tests.
//
// AppendToArrayField appends values to an array field, skipping values
// already present under JSON value equality, and creates the document
// if it does not exist yet.
type Store interface {
	GetDocument(ctx context.Context, collection, id string) (map[string]any, error)
	SetFields(ctx context.Context, collection, id string, fields map[string]any) error
	AppendToArrayField(ctx context.Context, collection, id, field string, values ...any) error
	ListDocuments(ctx context.Context, collection string) ([]Document, error)
}

// Encode turns a struct into document fields via its JSON form.
func Encode(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return fields, nil
}

// Decode fills a struct from document fields via its JSON form.
func Decode(fields map[string]any, v any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	return nil
}

// appendUnique implements the de-duplicating append semantics shared by
// the Postgres and in-memory stores. Equality is JSON value equality.
func appendUnique(existing, values []any) []any {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		if k, err := json.Marshal(v); err == nil {
			seen[string(k)] = true
		}
	}
	out := existing
	for _, v := range values {
		k, err := json.Marshal(v)
		if err != nil || seen[string(k)] {
			continue
		}
		seen[string(k)] = true
		out = append(out, v)
	}
	return out
}
