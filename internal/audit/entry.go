package audit

import (
	"context"
	"time"

	"github.com/hashicorp/go-dbw"
	"github.com/operand/credvault/internal/errors"
	"github.com/operand/credvault/internal/policy"
)

// Entry is one audit record.  Entries are append-only; the only deletion
// path is retention purge.
type Entry struct {
	// PublicId is the entry's external identifier.
	PublicId string `json:"public_id,omitempty" gorm:"primary_key"`
	// CreateTime is assigned by the log at record time.
	CreateTime time.Time `json:"create_time,omitempty" gorm:"default:current_timestamp"`
	// PrincipalId identifies who attempted the operation.
	PrincipalId string `json:"principal_id,omitempty" gorm:"default:null"`
	// PrincipalRole is the role the principal held at the time.
	PrincipalRole string `json:"principal_role,omitempty" gorm:"default:null"`
	// Action is the vault operation attempted.
	Action Action `json:"action,omitempty" gorm:"default:null"`
	// ResourceId is the credential acted on, or "*" when the operation
	// spans the collection.
	ResourceId string `json:"resource_id,omitempty" gorm:"default:null"`
	// Outcome records how the operation ended.
	Outcome Outcome `json:"outcome,omitempty" gorm:"default:null"`
	// Detail is optional masked context.  Never raw secret material.
	Detail string `json:"detail,omitempty" gorm:"default:null"`
	// EntryHmac chains this entry to the one recorded before it.
	EntryHmac string `json:"entry_hmac,omitempty" gorm:"default:null"`
}

// NewEntry creates a new in memory audit entry.  Supported options:
// WithDetail.
func NewEntry(ctx context.Context, principalId string, role policy.Role, action Action, resourceId string, outcome Outcome, opt ...Option) (*Entry, error) {
	const op = "audit.NewEntry"
	if principalId == "" {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing principal id")
	}
	if !action.Valid() {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "invalid action")
	}
	if !outcome.Valid() {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "invalid outcome")
	}
	if resourceId == "" {
		resourceId = "*"
	}
	opts := getOpts(opt...)
	return &Entry{
		PrincipalId:   principalId,
		PrincipalRole: role.String(),
		Action:        action,
		ResourceId:    resourceId,
		Outcome:       outcome,
		Detail:        opts.withDetail,
	}, nil
}

// VetForWrite validates the entry before it's written.  Updates are always
// rejected since the log is append-only.
func (e *Entry) VetForWrite(ctx context.Context, _ dbw.Reader, opType dbw.OpType, _ ...dbw.Option) error {
	const op = "audit.(Entry).VetForWrite"
	if opType == dbw.UpdateOp {
		return errors.New(ctx, errors.ImmutableColumn, op, "audit entries are append-only")
	}
	if e.PublicId == "" {
		return errors.New(ctx, errors.InvalidPublicId, op, "missing public id")
	}
	return nil
}

// TableName returns the table name.
func (e *Entry) TableName() string {
	return "audit_entry"
}

// GetPublicId returns the entry's public id.
func (e *Entry) GetPublicId() string { return e.PublicId }
