package store

// RotationPolicy controls how a credential's rotation status is reported.
// Rotation itself is always caller triggered.
type RotationPolicy string

const (
	UnknownRotationPolicy RotationPolicy = "unknown"
	ManualRotation        RotationPolicy = "manual"
	ScheduledRotation     RotationPolicy = "scheduled"
	OnExpiryRotation      RotationPolicy = "on-expiry-only"
)

func (p RotationPolicy) Valid() bool {
	switch p {
	case ManualRotation, ScheduledRotation, OnExpiryRotation:
		return true
	}
	return false
}

func (p RotationPolicy) String() string {
	return string(p)
}
