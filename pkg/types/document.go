package types

import (
	"fmt"
	"strconv"
)

// Well-known metadata keys. Metadata is an open mapping; these are the keys
// the core itself reads.
const (
	MetaSource       = "source"
	MetaCollectionID = "collection_id"
	MetaDocumentDate = "document_date"
	MetaFiscalYear   = "fiscal_year"
	MetaVersion      = "version"
	MetaIsSuperseded = "is_superseded"
)

// Metadata is an open mapping from string keys to string, number, or bool
// values attached to a document at ingestion.
type Metadata map[string]any

// GetString returns the value for key as a string, or "" if absent or not a
// string.
func (m Metadata) GetString(key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// GetBool returns the value for key as a bool, or false if absent or not a
// bool.
func (m Metadata) GetBool(key string) bool {
	if m == nil {
		return false
	}
	if b, ok := m[key].(bool); ok {
		return b
	}
	return false
}

// Clone returns a shallow copy of the metadata map.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ToStringMap renders every value as a string. Used by store backends whose
// payload type is map[string]string.
func (m Metadata) ToStringMap() map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			out[k] = val
		case bool:
			out[k] = strconv.FormatBool(val)
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case int:
			out[k] = strconv.Itoa(val)
		case int64:
			out[k] = strconv.FormatInt(val, 10)
		default:
			out[k] = fmt.Sprintf("%v", val)
		}
	}
	return out
}

// MetadataFromStringMap converts a string-valued payload back into Metadata.
// Values stay strings; typed readers tolerate that.
func MetadataFromStringMap(m map[string]string) Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Document is one retrievable chunk of source text plus its embedding and
// metadata. Text and embedding are immutable after ingestion; metadata may
// later be mutated only to mark the document superseded.
type Document struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  Metadata
}

// HasEmbedding reports whether the document carries a non-empty embedding.
func (d *Document) HasEmbedding() bool {
	return len(d.Embedding) > 0
}

// Validate checks the invariants required for a document to enter a
// collection with the given embedding dimension. A zero wantDim skips the
// dimension check.
func (d *Document) Validate(wantDim int) error {
	if d.ID == "" {
		return fmt.Errorf("document has no ID: %w", ErrNotFound)
	}
	if wantDim > 0 && len(d.Embedding) > 0 && len(d.Embedding) != wantDim {
		return fmt.Errorf("document %s has dimension %d, collection expects %d: %w",
			d.ID, len(d.Embedding), wantDim, ErrDimensionMismatch)
	}
	return nil
}
