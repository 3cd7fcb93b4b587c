package vault

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-dbw"
	"github.com/operand/credvault/internal/db"
	"github.com/operand/credvault/internal/errors"
	"github.com/operand/credvault/internal/vault/store"
)

// CredentialPrefix is the public id prefix for credentials.
const CredentialPrefix = "cred"

// Repository is the database access layer for credential records.  It is
// concurrency safe; conflicting writes are serialized by the record's
// version column rather than locks.
type Repository struct {
	reader dbw.Reader
	writer dbw.Writer
}

// NewRepository creates a repository over an open database.
func NewRepository(ctx context.Context, conn *dbw.DB) (*Repository, error) {
	const op = "vault.NewRepository"
	if conn == nil {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing database connection")
	}
	rw := dbw.New(conn)
	return &Repository{
		reader: rw,
		writer: rw,
	}, nil
}

// CreateCredential inserts c into the repository and returns the stored
// record with its assigned public id and version 1.  An id collision is
// reported as NotUnique, not ignored.
func (r *Repository) CreateCredential(ctx context.Context, c *store.Credential, _ ...Option) (*store.Credential, error) {
	const op = "vault.(Repository).CreateCredential"
	if c == nil {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing credential")
	}
	if c.PublicId != "" {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "public id is not empty")
	}
	id, err := db.NewPublicId(ctx, CredentialPrefix)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	cred := c.Clone()
	cred.PublicId = id
	cred.Version = 1

	_, err = r.writer.DoTx(ctx, db.NonRetryableFn, db.StdRetryCnt, dbw.ExpBackoff{},
		func(_ dbw.Reader, w dbw.Writer) error {
			return w.Create(ctx, cred)
		},
	)
	if err != nil {
		if errors.IsUniqueError(err) {
			return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.NotUnique),
				errors.WithMsg(fmt.Sprintf("credential %q already exists", id)))
		}
		return nil, errors.Wrap(ctx, err, op)
	}
	return cred, nil
}

// LookupCredential returns the full record, ciphertext and key parameters
// included.  Callers that only need metadata should use ListCredentials.
func (r *Repository) LookupCredential(ctx context.Context, publicId string, _ ...Option) (*store.Credential, error) {
	const op = "vault.(Repository).LookupCredential"
	if publicId == "" {
		return nil, errors.New(ctx, errors.InvalidPublicId, op, "missing public id")
	}
	c := &store.Credential{PublicId: publicId}
	if err := r.reader.LookupBy(ctx, c); err != nil {
		if errors.IsNotFoundError(err) {
			return nil, errors.New(ctx, errors.RecordNotFound, op,
				fmt.Sprintf("failed for %q", publicId))
		}
		return nil, errors.Wrap(ctx, err, op, errors.WithMsg(fmt.Sprintf("failed for %q", publicId)))
	}
	return c, nil
}

// ListCredentials returns every record ordered by create time, with the
// ciphertext and key derivation parameters stripped.  Supported options:
// WithLimit.
func (r *Repository) ListCredentials(ctx context.Context, opt ...Option) ([]*store.Credential, error) {
	const op = "vault.(Repository).ListCredentials"
	opts := getOpts(opt...)
	limit := opts.withLimit
	if limit == 0 {
		limit = -1
	}
	var creds []*store.Credential
	if err := r.reader.SearchWhere(ctx, &creds, "", nil,
		dbw.WithOrder("create_time asc, public_id asc"), dbw.WithLimit(limit)); err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	for _, c := range creds {
		c.Ciphertext = nil
		c.KeySalt = nil
		c.KeyIterations = 0
	}
	return creds, nil
}

// UpdateCredential applies the masked fields of c when the stored version
// matches version, bumping the version on success.  A stale version is
// reported as VersionMismatch so callers can re-read and retry.  PublicId,
// Type and CreateTime are immutable.
func (r *Repository) UpdateCredential(ctx context.Context, c *store.Credential, version uint32, fieldMaskPaths []string, _ ...Option) (*store.Credential, int, error) {
	const op = "vault.(Repository).UpdateCredential"
	if c == nil {
		return nil, db.NoRowsAffected, errors.New(ctx, errors.InvalidParameter, op, "missing credential")
	}
	if c.PublicId == "" {
		return nil, db.NoRowsAffected, errors.New(ctx, errors.InvalidPublicId, op, "missing public id")
	}
	if version == 0 {
		return nil, db.NoRowsAffected, errors.New(ctx, errors.InvalidParameter, op, "missing version")
	}
	if len(fieldMaskPaths) == 0 {
		return nil, db.NoRowsAffected, errors.New(ctx, errors.EmptyFieldMask, op, "missing field mask")
	}
	var dbMask, nullFields []string
	for _, f := range fieldMaskPaths {
		switch {
		case strings.EqualFold("Description", f):
			if c.Description == "" {
				nullFields = append(nullFields, "Description")
				continue
			}
			dbMask = append(dbMask, "Description")
		case strings.EqualFold("Tags", f):
			if len(c.Tags) == 0 {
				nullFields = append(nullFields, "Tags")
				continue
			}
			dbMask = append(dbMask, "Tags")
		case strings.EqualFold("ExpireTime", f):
			if c.ExpireTime == nil {
				nullFields = append(nullFields, "ExpireTime")
				continue
			}
			dbMask = append(dbMask, "ExpireTime")
		case strings.EqualFold("RotationPolicy", f):
			if !c.RotationPolicy.Valid() {
				return nil, db.NoRowsAffected, errors.New(ctx, errors.InvalidParameter, op, "invalid rotation policy")
			}
			dbMask = append(dbMask, "RotationPolicy")
		case strings.EqualFold("Ciphertext", f):
			dbMask = append(dbMask, "Ciphertext")
		case strings.EqualFold("KeySalt", f):
			dbMask = append(dbMask, "KeySalt")
		case strings.EqualFold("KeyIterations", f):
			dbMask = append(dbMask, "KeyIterations")
		case strings.EqualFold("LastRotatedTime", f):
			if c.LastRotatedTime == nil {
				nullFields = append(nullFields, "LastRotatedTime")
				continue
			}
			dbMask = append(dbMask, "LastRotatedTime")
		default:
			return nil, db.NoRowsAffected, errors.New(ctx, errors.InvalidFieldMask, op,
				fmt.Sprintf("invalid field mask %q", f))
		}
	}

	cred := c.Clone()
	cred.Version = version + 1
	dbMask = append(dbMask, "Version")

	var rowsUpdated int
	_, err := r.writer.DoTx(ctx, db.NonRetryableFn, db.StdRetryCnt, dbw.ExpBackoff{},
		func(_ dbw.Reader, w dbw.Writer) error {
			var err error
			rowsUpdated, err = w.Update(ctx, cred, dbMask, nullFields, dbw.WithVersion(&version))
			if err != nil {
				return err
			}
			if rowsUpdated > 1 {
				return errors.New(ctx, errors.MultipleRecords, op, "more than one record updated")
			}
			return nil
		},
	)
	if err != nil {
		return nil, db.NoRowsAffected, errors.Wrap(ctx, err, op,
			errors.WithMsg(fmt.Sprintf("failed for %q", c.PublicId)))
	}
	if rowsUpdated == 0 {
		// decide between a missing record and a stale version
		if _, err := r.LookupCredential(ctx, c.PublicId); err != nil {
			return nil, db.NoRowsAffected, errors.Wrap(ctx, err, op)
		}
		return nil, db.NoRowsAffected, errors.New(ctx, errors.VersionMismatch, op,
			fmt.Sprintf("update of %q failed: version %d is stale", c.PublicId, version))
	}
	return cred, rowsUpdated, nil
}

// reinsertCredential writes back a previously deleted record exactly as it
// was, keeping its public id, version and timestamps.  It exists so a delete
// whose audit append failed can be undone.
func (r *Repository) reinsertCredential(ctx context.Context, c *store.Credential) error {
	const op = "vault.(Repository).reinsertCredential"
	if c == nil || c.PublicId == "" {
		return errors.New(ctx, errors.InvalidParameter, op, "missing credential")
	}
	_, err := r.writer.DoTx(ctx, db.NonRetryableFn, db.StdRetryCnt, dbw.ExpBackoff{},
		func(_ dbw.Reader, w dbw.Writer) error {
			return w.Create(ctx, c.Clone())
		},
	)
	if err != nil {
		return errors.Wrap(ctx, err, op, errors.WithMsg(fmt.Sprintf("failed for %q", c.PublicId)))
	}
	return nil
}

// DeleteCredential removes the record.  Deleting a missing or already
// deleted credential is RecordNotFound.
func (r *Repository) DeleteCredential(ctx context.Context, publicId string, _ ...Option) (int, error) {
	const op = "vault.(Repository).DeleteCredential"
	if publicId == "" {
		return db.NoRowsAffected, errors.New(ctx, errors.InvalidPublicId, op, "missing public id")
	}
	c := &store.Credential{PublicId: publicId}
	var rowsDeleted int
	_, err := r.writer.DoTx(ctx, db.NonRetryableFn, db.StdRetryCnt, dbw.ExpBackoff{},
		func(_ dbw.Reader, w dbw.Writer) error {
			var err error
			rowsDeleted, err = w.Delete(ctx, c)
			if err != nil {
				return err
			}
			if rowsDeleted > 1 {
				return errors.New(ctx, errors.MultipleRecords, op, "more than one record deleted")
			}
			return nil
		},
	)
	if err != nil {
		return db.NoRowsAffected, errors.Wrap(ctx, err, op,
			errors.WithMsg(fmt.Sprintf("failed for %q", publicId)))
	}
	if rowsDeleted == 0 {
		return db.NoRowsAffected, errors.New(ctx, errors.RecordNotFound, op,
			fmt.Sprintf("failed for %q", publicId))
	}
	return rowsDeleted, nil
}
