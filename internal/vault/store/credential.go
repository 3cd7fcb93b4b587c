package store

import (
	"context"
	"time"

	"github.com/hashicorp/go-dbw"
	"github.com/operand/credvault/internal/crypto"
	"github.com/operand/credvault/internal/errors"
)

// Credential is the stored form of a secret.  The plaintext never appears
// here; Ciphertext carries a marshaled wrapping.BlobInfo and KeySalt plus
// KeyIterations hold the parameters needed to re-derive its key.
type Credential struct {
	// PublicId is the credential's external identifier.  Immutable.
	PublicId string `json:"public_id,omitempty" gorm:"primary_key"`
	// Type classifies the secret.  Immutable.
	Type CredentialType `json:"credential_type,omitempty" gorm:"column:credential_type;default:null"`
	// Ciphertext is the marshaled encrypted blob.
	Ciphertext []byte `json:"-" gorm:"default:null"`
	// KeySalt is the per-credential key derivation salt.
	KeySalt []byte `json:"-" gorm:"default:null"`
	// KeyIterations is the PBKDF2 iteration count used for this record.
	KeyIterations int `json:"-" gorm:"default:null"`
	// Description is optional operator-facing text.
	Description string `json:"description,omitempty" gorm:"default:null"`
	// Tags are non-sensitive labels.
	Tags TagList `json:"tags,omitempty" gorm:"column:tags;default:null"`
	// RotationPolicy controls rotation status reporting.
	RotationPolicy RotationPolicy `json:"rotation_policy,omitempty" gorm:"default:null"`
	// CreateTime is assigned by NewCredential.  Immutable.
	CreateTime time.Time `json:"create_time,omitempty" gorm:"default:current_timestamp"`
	// ExpireTime is optional; when set it must be after CreateTime.
	ExpireTime *time.Time `json:"expire_time,omitempty" gorm:"default:null"`
	// LastRotatedTime starts as the create time and advances on every
	// successful rotation.
	LastRotatedTime *time.Time `json:"last_rotated_time,omitempty" gorm:"default:null"`
	// Version is bumped on every update and guards optimistic writes.
	Version uint32 `json:"version,omitempty" gorm:"default:null"`
}

// NewCredential creates a new in memory credential of the given type.  The
// ciphertext, key parameters and public id are assigned by the caller before
// the record is written.  Supported options: WithDescription, WithTags,
// WithExpireTime, WithRotationPolicy.
func NewCredential(ctx context.Context, typ CredentialType, opt ...Option) (*Credential, error) {
	const op = "store.NewCredential"
	if !typ.Valid() {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "invalid credential type")
	}
	opts := getOpts(opt...)
	now := time.Now().UTC()
	if opts.withExpireTime != nil && !opts.withExpireTime.After(now) {
		return nil, errors.New(ctx, errors.InvalidTimeStamp, op, "expire time must be in the future")
	}
	c := &Credential{
		Type:            typ,
		Description:     opts.withDescription,
		Tags:            opts.withTags.clone(),
		RotationPolicy:  opts.withRotationPolicy,
		CreateTime:      now,
		ExpireTime:      opts.withExpireTime,
		LastRotatedTime: &now,
	}
	return c, nil
}

// AllocCredential makes an empty one in memory, typically to stage an
// update.
func AllocCredential() *Credential {
	return &Credential{}
}

// Clone creates a copy of the credential safe to mutate.
func (c *Credential) Clone() *Credential {
	cp := &Credential{
		PublicId:       c.PublicId,
		Type:           c.Type,
		KeyIterations:  c.KeyIterations,
		Description:    c.Description,
		Tags:           c.Tags.clone(),
		RotationPolicy: c.RotationPolicy,
		CreateTime:     c.CreateTime,
		Version:        c.Version,
	}
	if c.Ciphertext != nil {
		cp.Ciphertext = make([]byte, len(c.Ciphertext))
		copy(cp.Ciphertext, c.Ciphertext)
	}
	if c.KeySalt != nil {
		cp.KeySalt = make([]byte, len(c.KeySalt))
		copy(cp.KeySalt, c.KeySalt)
	}
	if c.ExpireTime != nil {
		t := *c.ExpireTime
		cp.ExpireTime = &t
	}
	if c.LastRotatedTime != nil {
		t := *c.LastRotatedTime
		cp.LastRotatedTime = &t
	}
	return cp
}

// VetForWrite validates the credential before it's written.  Ciphertext and
// its key derivation parameters must land together, so a create with one but
// not the others is rejected here.
func (c *Credential) VetForWrite(ctx context.Context, _ dbw.Reader, opType dbw.OpType, _ ...dbw.Option) error {
	const op = "store.(Credential).VetForWrite"
	if c.PublicId == "" {
		return errors.New(ctx, errors.InvalidPublicId, op, "missing public id")
	}
	if opType != dbw.CreateOp {
		return nil
	}
	if !c.Type.Valid() {
		return errors.New(ctx, errors.InvalidParameter, op, "invalid credential type")
	}
	if !c.RotationPolicy.Valid() {
		return errors.New(ctx, errors.InvalidParameter, op, "invalid rotation policy")
	}
	if len(c.Ciphertext) == 0 {
		return errors.New(ctx, errors.InvalidParameter, op, "missing ciphertext")
	}
	if len(c.KeySalt) == 0 {
		return errors.New(ctx, errors.InvalidParameter, op, "missing key salt")
	}
	if c.KeyIterations < crypto.MinIterations {
		return errors.New(ctx, errors.InvalidParameter, op, "key iterations below minimum")
	}
	return nil
}

// TableName returns the table name.
func (c *Credential) TableName() string {
	return "credential_record"
}

// GetPublicId returns the credential's public id.
func (c *Credential) GetPublicId() string { return c.PublicId }

// GetVersion returns the credential's version.
func (c *Credential) GetVersion() uint32 { return c.Version }
