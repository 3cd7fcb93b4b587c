package errors

// Code specifies a code for the error.
type Code uint32

// String will return the Code's Info.Message
func (c Code) String() string {
	return c.Info().Message
}

// Info will look up the Code's Info.  If the Info is not found, it will return
// Info for an Unknown Code.
func (c Code) Info() Info {
	if info, ok := errorCodeInfo[c]; ok {
		return info
	}
	return errorCodeInfo[Unknown]
}

const (
	Unknown Code = 0 // Unknown will be equal to a zero value for Codes

	// General function errors are reserved Codes 100-999
	InvalidParameter     Code = 100 // InvalidParameter represents an invalid parameter for an operation.
	InvalidPublicId      Code = 102 // InvalidPublicId represents an invalid public id for an operation.
	InvalidFieldMask     Code = 103 // InvalidFieldMask represents an invalid field mask for an update.
	EmptyFieldMask       Code = 104 // EmptyFieldMask represents an empty field mask for an update.
	InvalidConfiguration Code = 110 // InvalidConfiguration represents a policy configuration that failed load-time validation.
	InvalidTimeStamp     Code = 111 // InvalidTimeStamp represents an invalid time stamp (e.g. an expiration in the past).

	PasswordTooShort             Code = 120 // PasswordTooShort results from a password that violates the policy's minimum length.
	PasswordInvalidConfiguration Code = 121 // PasswordInvalidConfiguration results from an invalid password policy configuration.

	// Crypto errors are reserved Codes 200-299
	KeyDerivation  Code = 200 // KeyDerivation represents a failure to derive a key from the master secret.
	Encrypt        Code = 201 // Encrypt represents an error occurred during the underlying encryption process.
	Decrypt        Code = 202 // Decrypt represents an error occurred during the underlying decryption process.
	IntegrityCheck Code = 203 // IntegrityCheck represents an authentication tag that failed to verify: tampering or a wrong key.

	// AuthZ errors are reserved Codes 300-399
	Forbidden   Code = 300 // Forbidden represents an authorization denial for the requested operation.
	RateLimited Code = 301 // RateLimited represents a request rejected by the rate limiter.

	// Audit errors are reserved Codes 400-499
	AuditWrite Code = 400 // AuditWrite represents a failure to append an audit entry.

	// DB errors are reserved Codes from 1000-1999
	CheckConstraint Code = 1000 // CheckConstraint represents a check constraint error
	NotNull         Code = 1001 // NotNull represents a value must not be null error
	NotUnique       Code = 1002 // NotUnique represents a value must be unique error
	RecordNotFound  Code = 1100 // RecordNotFound represents that a record/row was not found matching the criteria
	MultipleRecords Code = 1101 // MultipleRecords represents that multiple records/rows were found matching the criteria
	VersionMismatch Code = 1103 // VersionMismatch represents the update version and the db version for an entry do not match.
	MaxRetries      Code = 1104 // MaxRetries represents that a transaction retry limit was exceeded.
	ImmutableColumn Code = 1105 // ImmutableColumn represents an update was attempted on an immutable column.

	// External system errors are reserved Codes 3000-3999
	Unavailable Code = 3000 // Unavailable represents that an external system was unavailable
)
