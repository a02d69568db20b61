package models

import (
	"encoding/json"
	"time"
)

// PendingRequest is the correlation entry kept while a lookup is in flight.
// It holds everything needed to route the eventual reply and is immutable
// once created.
type PendingRequest struct {
	CorrelationId string
	ThId          string
	Did           string
	Sender        string
	ReceivedAt    time.Time
}

// Result is the outcome of a single resolution attempt. Expected failures
// travel as failed results rather than errors so that a lookup gone wrong
// never escalates past the protocol boundary.
type Result struct {
	Success  bool
	Document json.RawMessage
	Kind     string
	Message  string
}

func Resolved(doc json.RawMessage) Result {
	return Result{Success: true, Document: doc}
}

func Failed(kind, message string) Result {
	return Result{Kind: kind, Message: message}
}
