package builder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/page-builder/backend/internal/models"
)

// DragMediaType is the drag-data key under which palette payloads travel.
const DragMediaType = "application/x-builder"

// ErrMalformedPayload marks a drop payload that is not a creation payload.
var ErrMalformedPayload = errors.New("malformed drop payload")

// DropPayload is what the palette puts on the drag channel: the kind to
// create and nothing else. It never carries an element id, which keeps it
// distinguishable from a ReorderRequest.
type DropPayload struct {
	Type models.ElementType `json:"type"`
}

// ReorderRequest moves ActiveID to the position currently held by OverID.
// Both ids are elements already known to the section.
type ReorderRequest struct {
	ActiveID string `json:"activeId"`
	OverID   string `json:"overId"`
}

// EncodeDropPayload serializes a creation payload.
func EncodeDropPayload(t models.ElementType) ([]byte, error) {
	return json.Marshal(DropPayload{Type: t})
}

// DecodeDropPayload parses raw drag data. Anything that is not a JSON
// object with a non-empty "type" and no "id" is rejected.
func DecodeDropPayload(data []byte) (DropPayload, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return DropPayload{}, fmt.Errorf("%w: empty", ErrMalformedPayload)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return DropPayload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if _, hasID := fields["id"]; hasID {
		return DropPayload{}, fmt.Errorf("%w: carries an element id", ErrMalformedPayload)
	}

	var p DropPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return DropPayload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if p.Type == "" {
		return DropPayload{}, fmt.Errorf("%w: missing type", ErrMalformedPayload)
	}
	return p, nil
}
