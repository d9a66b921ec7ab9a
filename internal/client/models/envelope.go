package models

import "encoding/json"

// Envelope is the JSON wrapper around every API response. Token is set by the
// auth endpoints only.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Token   string          `json:"token,omitempty"`
	Total   int             `json:"total,omitempty"`
}
