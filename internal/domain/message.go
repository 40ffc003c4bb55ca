package domain

import "encoding/json"

// InboundMessage is a decoded message event. Text is empty when the
// payload carried no string "text" field; Fields keeps every raw field.
type InboundMessage struct {
	Text   string
	Fields map[string]json.RawMessage
}

// OutboundMessage is the body of a message event the bot emits.
type OutboundMessage struct {
	Text string `json:"text"`
}
