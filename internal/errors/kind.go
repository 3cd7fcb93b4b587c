package errors

// Kind specifies the kind of error (unknown, parameter, integrity, etc).
type Kind uint32

const (
	Other Kind = iota
	Parameter
	Encryption
	Integrity
	Search
	Transaction
	State
	External
	Configuration
	Password
)

func (e Kind) String() string {
	return [...]string{
		"unknown",
		"parameter violation",
		"encryption issue",
		"integrity violation",
		"search issue",
		"db transaction issue",
		"state violation",
		"external system issue",
		"configuration issue",
		"password violation",
	}[e]
}
