package eventstore

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var ErrInvalidPayloadJSON = errors.New("payload json is not valid")
var ErrInvalidMetadataJSON = errors.New("metadata json is not valid")

// StorableEvents is an alias type for a slice of StorableEvent
type StorableEvents = []StorableEvent

// StorableEvent is the engine-facing representation of a domain event, built on scalars only.
//
// Construct it with BuildStorableEvent or BuildStorableEventWithEmptyMetadata.
type StorableEvent struct {
	EventType    string
	OccurredAt   time.Time
	PayloadJSON  []byte
	MetadataJSON []byte
}

// BuildStorableEvent returns an error if payloadJSON or metadataJSON are not valid JSON objects.
func BuildStorableEvent(eventType string, occurredAt time.Time, payloadJSON []byte, metadataJSON []byte) (StorableEvent, error) {
	if !isJSONObject(payloadJSON) {
		return StorableEvent{}, ErrInvalidPayloadJSON
	}

	if !isJSONObject(metadataJSON) {
		return StorableEvent{}, ErrInvalidMetadataJSON
	}

	return StorableEvent{
		EventType:    eventType,
		OccurredAt:   occurredAt,
		PayloadJSON:  payloadJSON,
		MetadataJSON: metadataJSON,
	}, nil
}

// BuildStorableEventWithEmptyMetadata is BuildStorableEvent with "{}" as metadata.
func BuildStorableEventWithEmptyMetadata(eventType string, occurredAt time.Time, payloadJSON []byte) (StorableEvent, error) {
	return BuildStorableEvent(eventType, occurredAt, payloadJSON, []byte("{}"))
}

// PayloadLookupFrom decodes the top-level string properties of a JSON payload.
// It is used by engines that evaluate predicates in Go instead of in SQL.
func PayloadLookupFrom(payloadJSON []byte) (PayloadLookup, error) {
	raw := make(map[string]any)
	if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &raw); err != nil {
		return nil, errors.Join(ErrInvalidPayloadJSON, err)
	}

	props := make(map[string]string, len(raw))
	for key, val := range raw {
		if s, ok := val.(string); ok {
			props[key] = s
		}
	}

	return func(key string) (string, bool) {
		v, ok := props[key]
		return v, ok
	}, nil
}

func isJSONObject(data []byte) bool {
	if !jsoniter.ConfigFastest.Valid(data) {
		return false
	}

	return jsoniter.ConfigFastest.Get(data).ValueType() == jsoniter.ObjectValue
}
