// Package scene holds the drawing data model and the deterministic merge
// that keeps concurrently edited copies of a room convergent.
//
// An element's shape and style are opaque here: decoding captures the raw
// JSON record and encoding emits it back byte-for-byte, so the sync layer
// round-trips fields it knows nothing about. Only the handful of sync
// attributes (id, version, versionNonce, updated, isDeleted) are parsed.
package scene

import (
	"encoding/json"
	"fmt"

	"github.com/skomarov/boardkeeper/internal/common"
)

// Element is one drawing primitive. The id is stable across edits; version
// is a monotonic per-id revision counter bumped by every edit, with
// versionNonce as the deterministic tie-break between equal versions.
// Deleted elements stay in the scene as tombstones so deletions propagate
// to peers instead of resurrecting on the next merge.
type Element struct {
	ID           string
	Version      int64
	VersionNonce int64
	Updated      int64
	Deleted      bool

	raw json.RawMessage
}

type elementFields struct {
	ID           string `json:"id"`
	Version      int64  `json:"version"`
	VersionNonce int64  `json:"versionNonce"`
	Updated      int64  `json:"updated"`
	IsDeleted    bool   `json:"isDeleted"`
}

// UnmarshalJSON parses the sync attributes and keeps the full record for
// passthrough.
func (e *Element) UnmarshalJSON(data []byte) error {
	var f elementFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	e.ID = f.ID
	e.Version = f.Version
	e.VersionNonce = f.VersionNonce
	e.Updated = f.Updated
	e.Deleted = f.IsDeleted
	e.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON emits the captured record unchanged. Elements constructed in
// code (tests, tooling) have no captured record and marshal just the sync
// attributes.
func (e Element) MarshalJSON() ([]byte, error) {
	if e.raw != nil {
		return e.raw, nil
	}
	return json.Marshal(elementFields{
		ID:           e.ID,
		Version:      e.Version,
		VersionNonce: e.VersionNonce,
		Updated:      e.Updated,
		IsDeleted:    e.Deleted,
	})
}

// newerThan reports whether e wins over other under the (version,
// versionNonce) lexicographic order.
func (e Element) newerThan(other Element) bool {
	if e.Version != other.Version {
		return e.Version > other.Version
	}
	return e.VersionNonce > other.VersionNonce
}

// DecodeElements parses a serialized scene and validates every record.
func DecodeElements(data []byte) ([]Element, error) {
	var elements []Element
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedElement, err)
	}
	if err := Validate(elements); err != nil {
		return nil, err
	}
	return elements, nil
}

// EncodeElements serializes a scene for sealing.
func EncodeElements(elements []Element) ([]byte, error) {
	if elements == nil {
		elements = []Element{}
	}
	return json.Marshal(elements)
}

// Validate rejects element sets that the reconciler cannot merge safely:
// records without an id, with a negative version, or with a duplicated id.
// The whole set is refused; elements are never silently dropped.
func Validate(elements []Element) error {
	seen := make(map[string]struct{}, len(elements))
	for i, e := range elements {
		if e.ID == "" {
			return fmt.Errorf("%w: element %d has no id", common.ErrMalformedElement, i)
		}
		if e.Version < 0 {
			return fmt.Errorf("%w: element %q has negative version %d", common.ErrMalformedElement, e.ID, e.Version)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: duplicate element id %q", common.ErrMalformedElement, e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}
