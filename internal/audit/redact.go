package audit

import "encoding/json"

const redactedSecret = "[REDACTED: secret]"

// Secret holds sensitive plaintext while it is in flight.  Any attempt to
// render it through fmt, %#v or json produces a redacted marker, so secrets
// cannot leak into audit details or log output by accident.
type Secret string

// String returns a string with the secret redacted.
func (s Secret) String() string {
	return redactedSecret
}

// GoString returns a string with the secret redacted.
func (s Secret) GoString() string {
	return redactedSecret
}

// MarshalJSON returns a JSON-encoded string with the secret redacted.
func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(redactedSecret)
}
