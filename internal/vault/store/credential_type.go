package store

// CredentialType classifies what a stored secret is used for.  The set is
// closed; anything outside it is rejected at write time.
type CredentialType string

const (
	UnknownType        CredentialType = "unknown"
	ApiKeyType         CredentialType = "api-key"
	ServiceAccountType CredentialType = "service-account"
	BankingLoginType   CredentialType = "banking-login"
	DatabaseSecretType CredentialType = "database-secret"
	OtherType          CredentialType = "other"
)

func (t CredentialType) Valid() bool {
	switch t {
	case ApiKeyType, ServiceAccountType, BankingLoginType, DatabaseSecretType, OtherType:
		return true
	}
	return false
}

// RequiresStructuredSecret reports whether the credential type's plaintext
// must be a structured username/secret document rather than an opaque blob.
func (t CredentialType) RequiresStructuredSecret() bool {
	switch t {
	case BankingLoginType, ServiceAccountType:
		return true
	}
	return false
}

func (t CredentialType) String() string {
	return string(t)
}
