package tapreader

import (
	"encoding/json"
	"fmt"

	"github.com/relex/etl-sink-agent/base"
)

// Message types in the upstream line protocol
const (
	MessageTypeSchema = "SCHEMA"
	MessageTypeRecord = "RECORD"
	MessageTypeState  = "STATE"
)

// Message is one parsed line from the upstream producer
//
// Exactly one of Schema, Record or State is meaningful, depending on Type
type Message struct {
	Type   string
	Stream string
	Schema base.StreamSchema // for SCHEMA
	Record base.Record       // for RECORD
	State  interface{}       // for STATE; opaque resumability token
}

type rawMessage struct {
	Type          string          `json:"type"`
	Stream        string          `json:"stream"`
	Schema        *rawSchemaBody  `json:"schema"`
	KeyProperties []string        `json:"key_properties"`
	Record        base.Record     `json:"record"`
	Value         json.RawMessage `json:"value"`
}

type rawSchemaBody struct {
	Properties map[string]base.PropertySchema `json:"properties"`
}

// ParseMessage decodes one line into a Message, validating the fields required by its type
func ParseMessage(line []byte) (Message, error) {
	var raw rawMessage
	if err := json.Unmarshal(line, &raw); err != nil {
		return Message{}, fmt.Errorf("malformed message: %w", err)
	}

	switch raw.Type {
	case MessageTypeSchema:
		if len(raw.Stream) == 0 {
			return Message{}, fmt.Errorf("SCHEMA message is missing 'stream'")
		}
		if raw.Schema == nil {
			return Message{}, fmt.Errorf("SCHEMA message for stream '%s' is missing 'schema'", raw.Stream)
		}
		return Message{
			Type:   MessageTypeSchema,
			Stream: raw.Stream,
			Schema: base.StreamSchema{
				Stream:        raw.Stream,
				Properties:    raw.Schema.Properties,
				KeyProperties: raw.KeyProperties,
			},
		}, nil

	case MessageTypeRecord:
		if len(raw.Stream) == 0 {
			return Message{}, fmt.Errorf("RECORD message is missing 'stream'")
		}
		if raw.Record == nil {
			return Message{}, fmt.Errorf("RECORD message for stream '%s' is missing 'record'", raw.Stream)
		}
		return Message{Type: MessageTypeRecord, Stream: raw.Stream, Record: raw.Record}, nil

	case MessageTypeState:
		var value interface{}
		if len(raw.Value) > 0 {
			if err := json.Unmarshal(raw.Value, &value); err != nil {
				return Message{}, fmt.Errorf("STATE message has malformed 'value': %w", err)
			}
		}
		return Message{Type: MessageTypeState, State: value}, nil

	case "":
		return Message{}, fmt.Errorf("message is missing 'type'")
	default:
		return Message{}, fmt.Errorf("unsupported message type '%s'", raw.Type)
	}
}
