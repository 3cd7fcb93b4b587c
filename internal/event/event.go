// Package event publishes vault domain events to registered sinks.  Delivery
// is best effort; the vault's correctness never depends on a sink.
package event

import (
	"time"

	"github.com/hashicorp/eventlogger"
)

// Type is a domain event type.
type Type string

const (
	CredentialCreated  Type = "credential.created"
	CredentialRotated  Type = "credential.rotated"
	CredentialExpiring Type = "credential.expiring"
	AccessDenied       Type = "access.denied"
)

func (t Type) Valid() bool {
	switch t {
	case CredentialCreated, CredentialRotated, CredentialExpiring, AccessDenied:
		return true
	}
	return false
}

func eventTypes() []eventlogger.EventType {
	return []eventlogger.EventType{
		eventlogger.EventType(CredentialCreated),
		eventlogger.EventType(CredentialRotated),
		eventlogger.EventType(CredentialExpiring),
		eventlogger.EventType(AccessDenied),
	}
}

// Payload is the body of every domain event.  Fields are classified so the
// encrypt filter can redact or encrypt anything not public before it reaches
// a sink.
type Payload struct {
	// EventId is a unique id assigned at send time.
	EventId string `json:"event_id,omitempty" class:"public"`
	// CredentialId names the credential involved, when there is one.
	CredentialId string `json:"credential_id,omitempty" class:"public"`
	// CredentialType is the credential's type token.
	CredentialType string `json:"credential_type,omitempty" class:"public"`
	// PrincipalId identifies who triggered the event.
	PrincipalId string `json:"principal_id,omitempty" class:"sensitive"`
	// Permission is the permission involved in a denial.
	Permission string `json:"permission,omitempty" class:"public"`
	// DaysUntilExpiration accompanies credential.expiring.
	DaysUntilExpiration int `json:"days_until_expiration,omitempty" class:"public"`
	// Timestamp is when the event was emitted.
	Timestamp time.Time `json:"timestamp,omitempty" class:"public"`
}
