// Package vault implements credential storage and retrieval with
// role-based access control.  Every operation follows the same shape:
// authorize, execute, audit.  Each call writes exactly one audit entry
// before it returns, whatever the outcome.
package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	wrapping "github.com/hashicorp/go-kms-wrapping/v2"
	"github.com/hashicorp/go-rate"
	"github.com/operand/credvault/internal/audit"
	"github.com/operand/credvault/internal/crypto"
	"github.com/operand/credvault/internal/db"
	"github.com/operand/credvault/internal/errors"
	"github.com/operand/credvault/internal/event"
	"github.com/operand/credvault/internal/policy"
	"github.com/operand/credvault/internal/vault/store"
	"google.golang.org/protobuf/proto"
)

// rotationExpiryWindow is how close to expiration a credential must be
// before it is reported as needing rotation.
const rotationExpiryWindow = 7

// Principal is the caller of a vault operation.
type Principal struct {
	Id   string
	Role policy.Role
}

// CredentialStatus is a list entry: credential metadata plus its computed
// expiration standing.  DaysUntilExpiration is -1 for credentials with no
// expiry.
type CredentialStatus struct {
	Credential          *store.Credential
	DaysUntilExpiration int
	NeedsRotation       bool
}

// Vault orchestrates credential operations.  It holds no per-request state
// and is safe for concurrent use.
type Vault struct {
	repo         *Repository
	policy       *policy.Store
	log          *audit.Log
	events       *event.Broker
	limiter      *rate.Limiter
	logger       hclog.Logger
	masterSecret []byte
	iterations   int
	auditAll     bool
}

// New assembles a vault.  The master secret keys every credential's derived
// encryption key and must satisfy the policy's password minimum length.
// Supported options: WithLogger, WithEventBroker, WithRateLimiter.
func New(ctx context.Context, repo *Repository, p *policy.Store, log *audit.Log, masterSecret []byte, opt ...Option) (*Vault, error) {
	const op = "vault.New"
	if repo == nil {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing repository")
	}
	if p == nil {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing policy store")
	}
	if log == nil {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing audit log")
	}
	if min := p.PasswordPolicy().MinLength; len(masterSecret) < min {
		return nil, errors.New(ctx, errors.PasswordTooShort, op,
			fmt.Sprintf("master secret shorter than the %d byte policy minimum", min))
	}
	opts := getOpts(opt...)
	logger := opts.withLogger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	v := &Vault{
		repo:         repo,
		policy:       p,
		log:          log,
		events:       opts.withEventBroker,
		limiter:      opts.withRateLimiter,
		logger:       logger,
		masterSecret: masterSecret,
		iterations:   p.KeyIterations(),
		auditAll:     p.ComplianceFlags().AuditAllAccess,
	}
	return v, nil
}

// StoreCredential encrypts and persists a new credential.  Requires
// credential:manage.  The returned record carries metadata only.
func (v *Vault) StoreCredential(ctx context.Context, p Principal, typ store.CredentialType, secret audit.Secret, opt ...store.Option) (*store.Credential, error) {
	const op = "vault.(Vault).StoreCredential"
	if err := v.checkRate(ctx, p, "credential", audit.ActionCreate, ""); err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	if !Authorize(v.policy, p.Role, policy.CredentialManage) {
		return nil, v.deny(ctx, op, p, audit.ActionCreate, "", policy.CredentialManage)
	}

	c, err := v.storeCredential(ctx, typ, secret, opt...)
	if err != nil {
		if aerr := v.recordAudit(ctx, p, audit.ActionCreate, "", audit.OutcomeFailure, errDetail(err)); aerr != nil {
			return nil, errors.Wrap(ctx, aerr, op)
		}
		return nil, errors.Wrap(ctx, err, op)
	}
	if aerr := v.recordAudit(ctx, p, audit.ActionCreate, c.PublicId, audit.OutcomeSuccess,
		fmt.Sprintf("stored %s credential", typ)); aerr != nil {
		v.undoCreate(ctx, c.PublicId)
		return nil, errors.Wrap(ctx, aerr, op)
	}
	v.emit(ctx, event.CredentialCreated, event.Payload{
		CredentialId:   c.PublicId,
		CredentialType: typ.String(),
		PrincipalId:    p.Id,
	})
	return scrub(c), nil
}

func (v *Vault) storeCredential(ctx context.Context, typ store.CredentialType, secret audit.Secret, opt ...store.Option) (*store.Credential, error) {
	const op = "vault.(Vault).storeCredential"
	if err := vetSecret(ctx, typ, secret); err != nil {
		return nil, err
	}
	c, err := store.NewCredential(ctx, typ, opt...)
	if err != nil {
		return nil, err
	}
	ciphertext, salt, err := v.encryptSecret(ctx, secret)
	if err != nil {
		return nil, err
	}
	c.Ciphertext = ciphertext
	c.KeySalt = salt
	c.KeyIterations = v.iterations
	return v.repo.CreateCredential(ctx, c)
}

// RetrieveCredential decrypts and returns a credential's secret along with
// its metadata.  Requires credential:use or credential:manage.  A failed
// integrity check propagates unchanged.
func (v *Vault) RetrieveCredential(ctx context.Context, p Principal, publicId string) (audit.Secret, *store.Credential, error) {
	const op = "vault.(Vault).RetrieveCredential"
	if err := v.checkRate(ctx, p, "credential", audit.ActionRead, publicId); err != nil {
		return "", nil, errors.Wrap(ctx, err, op)
	}
	if !AuthorizeAny(v.policy, p.Role, policy.CredentialUse, policy.CredentialManage) {
		return "", nil, v.deny(ctx, op, p, audit.ActionRead, publicId, policy.CredentialUse)
	}

	c, err := v.repo.LookupCredential(ctx, publicId)
	if err == nil {
		var secret audit.Secret
		if secret, err = v.decryptCredential(ctx, c); err == nil {
			if aerr := v.recordAudit(ctx, p, audit.ActionRead, publicId, audit.OutcomeSuccess,
				fmt.Sprintf("retrieved %s credential", c.Type)); aerr != nil {
				return "", nil, errors.Wrap(ctx, aerr, op)
			}
			return secret, scrub(c), nil
		}
	}
	if aerr := v.recordAudit(ctx, p, audit.ActionRead, publicId, audit.OutcomeFailure, errDetail(err)); aerr != nil {
		return "", nil, errors.Wrap(ctx, aerr, op)
	}
	return "", nil, errors.Wrap(ctx, err, op)
}

// ListCredentials returns metadata and expiration standing for every stored
// credential.  Requires credential:read, which is also satisfied by holding
// both job:read and data:view.  Ciphertext and key parameters never appear
// in the result.
func (v *Vault) ListCredentials(ctx context.Context, p Principal, opt ...Option) ([]*CredentialStatus, error) {
	const op = "vault.(Vault).ListCredentials"
	if err := v.checkRate(ctx, p, "credential", audit.ActionList, ""); err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	if !Authorize(v.policy, p.Role, policy.CredentialRead) {
		return nil, v.deny(ctx, op, p, audit.ActionList, "", policy.CredentialRead)
	}

	creds, err := v.repo.ListCredentials(ctx, opt...)
	if err != nil {
		if aerr := v.recordAudit(ctx, p, audit.ActionList, "", audit.OutcomeFailure, errDetail(err)); aerr != nil {
			return nil, errors.Wrap(ctx, aerr, op)
		}
		return nil, errors.Wrap(ctx, err, op)
	}
	now := time.Now()
	statuses := make([]*CredentialStatus, 0, len(creds))
	for _, c := range creds {
		days := daysUntilExpiration(now, c.ExpireTime)
		s := &CredentialStatus{
			Credential:          c,
			DaysUntilExpiration: days,
			NeedsRotation:       days >= 0 && days <= rotationExpiryWindow,
		}
		statuses = append(statuses, s)
		if s.NeedsRotation {
			v.emit(ctx, event.CredentialExpiring, event.Payload{
				CredentialId:        c.PublicId,
				CredentialType:      c.Type.String(),
				PrincipalId:         p.Id,
				DaysUntilExpiration: days,
			})
		}
	}
	if aerr := v.recordAudit(ctx, p, audit.ActionList, "", audit.OutcomeSuccess,
		fmt.Sprintf("listed %d credentials", len(statuses))); aerr != nil {
		return nil, errors.Wrap(ctx, aerr, op)
	}
	return statuses, nil
}

// RotateCredential re-encrypts a credential's secret under a freshly
// derived key.  Requires credential:manage.  The key is derived once; only
// the persist step is retried when a concurrent writer wins the version
// race, bounded at the standard retry count.
func (v *Vault) RotateCredential(ctx context.Context, p Principal, publicId string) (*store.Credential, error) {
	const op = "vault.(Vault).RotateCredential"
	if err := v.checkRate(ctx, p, "credential", audit.ActionRotate, publicId); err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	if !Authorize(v.policy, p.Role, policy.CredentialManage) {
		return nil, v.deny(ctx, op, p, audit.ActionRotate, publicId, policy.CredentialManage)
	}

	rotated, prior, err := v.rotateCredential(ctx, publicId)
	if err != nil {
		if aerr := v.recordAudit(ctx, p, audit.ActionRotate, publicId, audit.OutcomeFailure, errDetail(err)); aerr != nil {
			return nil, errors.Wrap(ctx, aerr, op)
		}
		return nil, errors.Wrap(ctx, err, op)
	}
	if aerr := v.recordAudit(ctx, p, audit.ActionRotate, publicId, audit.OutcomeSuccess,
		fmt.Sprintf("rotated %s credential", rotated.Type)); aerr != nil {
		v.undoUpdate(ctx, prior, rotated.Version, rotateFieldMask)
		return nil, errors.Wrap(ctx, aerr, op)
	}
	v.emit(ctx, event.CredentialRotated, event.Payload{
		CredentialId:   rotated.PublicId,
		CredentialType: rotated.Type.String(),
		PrincipalId:    p.Id,
	})
	return scrub(rotated), nil
}

// rotateFieldMask is the set of fields a rotation writes.
var rotateFieldMask = []string{"Ciphertext", "KeySalt", "KeyIterations", "LastRotatedTime"}

// rotateCredential returns the rotated record along with the pre-rotation
// record so the caller can undo the write if its audit append fails.
func (v *Vault) rotateCredential(ctx context.Context, publicId string) (*store.Credential, *store.Credential, error) {
	const op = "vault.(Vault).rotateCredential"
	salt, err := crypto.NewSalt(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(ctx, err, op)
	}
	key, err := crypto.DeriveKey(ctx, v.masterSecret, salt, v.iterations)
	if err != nil {
		return nil, nil, errors.Wrap(ctx, err, op)
	}
	cipher, err := crypto.NewCipher(ctx, key)
	if err != nil {
		return nil, nil, errors.Wrap(ctx, err, op)
	}

	for attempt := 0; attempt < db.StdRetryCnt; attempt++ {
		c, err := v.repo.LookupCredential(ctx, publicId)
		if err != nil {
			return nil, nil, errors.Wrap(ctx, err, op)
		}
		secret, err := v.decryptCredential(ctx, c)
		if err != nil {
			return nil, nil, errors.Wrap(ctx, err, op)
		}
		blob, err := crypto.Encrypt(ctx, []byte(secret), cipher)
		if err != nil {
			return nil, nil, errors.Wrap(ctx, err, op)
		}
		ciphertext, err := proto.Marshal(blob)
		if err != nil {
			return nil, nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.Encrypt))
		}
		uc := c.Clone()
		uc.Ciphertext = ciphertext
		uc.KeySalt = salt
		uc.KeyIterations = v.iterations
		now := time.Now().UTC()
		uc.LastRotatedTime = &now

		updated, _, err := v.repo.UpdateCredential(ctx, uc, c.Version, rotateFieldMask)
		switch {
		case err == nil:
			return updated, c, nil
		case errors.IsVersionMismatchError(err):
			// a concurrent writer won; re-read and try again
			continue
		default:
			return nil, nil, errors.Wrap(ctx, err, op)
		}
	}
	return nil, nil, errors.New(ctx, errors.MaxRetries, op,
		fmt.Sprintf("rotation of %q gave up after %d version conflicts", publicId, db.StdRetryCnt))
}

// UpdateCredential changes a credential's metadata.  Only Description,
// Tags, ExpireTime and RotationPolicy may appear in the field mask; the
// encrypted material only changes through rotation.  Requires
// credential:manage.
func (v *Vault) UpdateCredential(ctx context.Context, p Principal, c *store.Credential, version uint32, fieldMaskPaths []string) (*store.Credential, error) {
	const op = "vault.(Vault).UpdateCredential"
	publicId := ""
	if c != nil {
		publicId = c.PublicId
	}
	if err := v.checkRate(ctx, p, "credential", audit.ActionUpdate, publicId); err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	if !Authorize(v.policy, p.Role, policy.CredentialManage) {
		return nil, v.deny(ctx, op, p, audit.ActionUpdate, publicId, policy.CredentialManage)
	}

	updated, prior, err := v.updateCredential(ctx, c, version, fieldMaskPaths)
	if err != nil {
		if aerr := v.recordAudit(ctx, p, audit.ActionUpdate, publicId, audit.OutcomeFailure, errDetail(err)); aerr != nil {
			return nil, errors.Wrap(ctx, aerr, op)
		}
		return nil, errors.Wrap(ctx, err, op)
	}
	if aerr := v.recordAudit(ctx, p, audit.ActionUpdate, publicId, audit.OutcomeSuccess,
		fmt.Sprintf("updated %v", fieldMaskPaths)); aerr != nil {
		v.undoUpdate(ctx, prior, updated.Version, fieldMaskPaths)
		return nil, errors.Wrap(ctx, aerr, op)
	}
	return scrub(updated), nil
}

// updateCredential returns the updated record along with the pre-update
// record so the caller can undo the write if its audit append fails.
func (v *Vault) updateCredential(ctx context.Context, c *store.Credential, version uint32, fieldMaskPaths []string) (*store.Credential, *store.Credential, error) {
	const op = "vault.(Vault).updateCredential"
	if c == nil {
		return nil, nil, errors.New(ctx, errors.InvalidParameter, op, "missing credential")
	}
	for _, f := range fieldMaskPaths {
		switch {
		case strings.EqualFold("Description", f),
			strings.EqualFold("Tags", f),
			strings.EqualFold("ExpireTime", f),
			strings.EqualFold("RotationPolicy", f):
		default:
			return nil, nil, errors.New(ctx, errors.InvalidFieldMask, op,
				fmt.Sprintf("invalid field mask %q", f))
		}
	}
	prior, err := v.repo.LookupCredential(ctx, c.PublicId)
	if err != nil {
		return nil, nil, err
	}
	updated, _, err := v.repo.UpdateCredential(ctx, c, version, fieldMaskPaths)
	if err != nil {
		return nil, nil, err
	}
	return updated, prior, nil
}

// DeleteCredential permanently removes a credential.  Requires
// credential:delete.  There is no undo.
func (v *Vault) DeleteCredential(ctx context.Context, p Principal, publicId string) error {
	const op = "vault.(Vault).DeleteCredential"
	if err := v.checkRate(ctx, p, "credential", audit.ActionDelete, publicId); err != nil {
		return errors.Wrap(ctx, err, op)
	}
	if !Authorize(v.policy, p.Role, policy.CredentialDelete) {
		return v.deny(ctx, op, p, audit.ActionDelete, publicId, policy.CredentialDelete)
	}

	prior, err := v.repo.LookupCredential(ctx, publicId)
	if err == nil {
		_, err = v.repo.DeleteCredential(ctx, publicId)
	}
	if err != nil {
		if aerr := v.recordAudit(ctx, p, audit.ActionDelete, publicId, audit.OutcomeFailure, errDetail(err)); aerr != nil {
			return errors.Wrap(ctx, aerr, op)
		}
		return errors.Wrap(ctx, err, op)
	}
	if aerr := v.recordAudit(ctx, p, audit.ActionDelete, publicId, audit.OutcomeSuccess, "deleted credential"); aerr != nil {
		v.undoDelete(ctx, prior)
		return errors.Wrap(ctx, aerr, op)
	}
	return nil
}

// ListAuditEntries queries the audit trail.  Requires audit:read.
// Supported options are the audit package's query filters.
func (v *Vault) ListAuditEntries(ctx context.Context, p Principal, opt ...audit.Option) ([]*audit.Entry, error) {
	const op = "vault.(Vault).ListAuditEntries"
	if err := v.checkRate(ctx, p, "audit", audit.ActionRead, "audit"); err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	if !Authorize(v.policy, p.Role, policy.AuditRead) {
		return nil, v.deny(ctx, op, p, audit.ActionRead, "audit", policy.AuditRead)
	}
	entries, err := v.log.Query(ctx, opt...)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	return entries, nil
}

// PurgeExpiredAuditEntries removes audit entries past the policy's
// retention window.  Requires both audit:read and credential:manage.  The
// purge records its own audit entry.
func (v *Vault) PurgeExpiredAuditEntries(ctx context.Context, p Principal) (int, error) {
	const op = "vault.(Vault).PurgeExpiredAuditEntries"
	if err := v.checkRate(ctx, p, "audit", audit.ActionPurge, "audit"); err != nil {
		return db.NoRowsAffected, errors.Wrap(ctx, err, op)
	}
	if !Authorize(v.policy, p.Role, policy.AuditRead) || !Authorize(v.policy, p.Role, policy.CredentialManage) {
		return db.NoRowsAffected, v.deny(ctx, op, p, audit.ActionPurge, "audit", policy.AuditRead)
	}
	purged, err := v.log.PurgeExpired(ctx, v.policy.ComplianceFlags().RetentionDays)
	if err != nil {
		return db.NoRowsAffected, errors.Wrap(ctx, err, op)
	}
	return purged, nil
}

func (v *Vault) encryptSecret(ctx context.Context, secret audit.Secret) ([]byte, []byte, error) {
	const op = "vault.(Vault).encryptSecret"
	salt, err := crypto.NewSalt(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(ctx, err, op)
	}
	key, err := crypto.DeriveKey(ctx, v.masterSecret, salt, v.iterations)
	if err != nil {
		return nil, nil, errors.Wrap(ctx, err, op)
	}
	cipher, err := crypto.NewCipher(ctx, key)
	if err != nil {
		return nil, nil, errors.Wrap(ctx, err, op)
	}
	blob, err := crypto.Encrypt(ctx, []byte(secret), cipher)
	if err != nil {
		return nil, nil, errors.Wrap(ctx, err, op)
	}
	ciphertext, err := proto.Marshal(blob)
	if err != nil {
		return nil, nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.Encrypt))
	}
	return ciphertext, salt, nil
}

func (v *Vault) decryptCredential(ctx context.Context, c *store.Credential) (audit.Secret, error) {
	const op = "vault.(Vault).decryptCredential"
	key, err := crypto.DeriveKey(ctx, v.masterSecret, c.KeySalt, c.KeyIterations)
	if err != nil {
		return "", errors.Wrap(ctx, err, op)
	}
	cipher, err := crypto.NewCipher(ctx, key)
	if err != nil {
		return "", errors.Wrap(ctx, err, op)
	}
	blob := &wrapping.BlobInfo{}
	if err := proto.Unmarshal(c.Ciphertext, blob); err != nil {
		return "", errors.New(ctx, errors.IntegrityCheck, op,
			fmt.Sprintf("stored ciphertext for %q is malformed", c.PublicId))
	}
	plaintext, err := crypto.Decrypt(ctx, blob, cipher)
	if err != nil {
		return "", errors.Wrap(ctx, err, op)
	}
	return audit.Secret(plaintext), nil
}

// structuredSecret is the required plaintext shape for credential types
// that carry a username alongside the secret.
type structuredSecret struct {
	Username string `json:"username"`
	Secret   string `json:"secret"`
}

func vetSecret(ctx context.Context, typ store.CredentialType, secret audit.Secret) error {
	const op = "vault.vetSecret"
	if len(secret) == 0 {
		return errors.New(ctx, errors.InvalidParameter, op, "missing secret")
	}
	if !typ.RequiresStructuredSecret() {
		return nil
	}
	var s structuredSecret
	if err := json.Unmarshal([]byte(secret), &s); err != nil {
		return errors.New(ctx, errors.InvalidParameter, op,
			fmt.Sprintf("%s credentials require a structured username/secret payload", typ))
	}
	if s.Username == "" || s.Secret == "" {
		return errors.New(ctx, errors.InvalidParameter, op,
			fmt.Sprintf("%s credentials require both username and secret", typ))
	}
	return nil
}

// deny records the denial and returns Forbidden.  The entry and the error
// look the same whether or not the resource exists.
func (v *Vault) deny(ctx context.Context, op errors.Op, p Principal, action audit.Action, resourceId string, perm policy.Permission) error {
	if err := v.recordAudit(ctx, p, action, resourceId, audit.OutcomeDenied,
		fmt.Sprintf("missing %s", perm)); err != nil {
		return errors.Wrap(ctx, err, op)
	}
	v.emit(ctx, event.AccessDenied, event.Payload{
		CredentialId: resourceId,
		PrincipalId:  p.Id,
		Permission:   string(perm),
	})
	return errors.New(ctx, errors.Forbidden, op, "permission denied")
}

// recordAudit writes one entry.  When the policy demands auditing of all
// access, a write failure fails the operation that triggered it; otherwise
// it is logged and the operation proceeds.
func (v *Vault) recordAudit(ctx context.Context, p Principal, action audit.Action, resourceId string, outcome audit.Outcome, detail string) error {
	const op = "vault.(Vault).recordAudit"
	principalId := p.Id
	if principalId == "" {
		principalId = "anonymous"
	}
	e, err := audit.NewEntry(ctx, principalId, p.Role, action, resourceId, outcome, audit.WithDetail(detail))
	if err == nil {
		err = v.log.Record(ctx, e)
	}
	if err != nil {
		if v.auditAll {
			return errors.Wrap(ctx, err, op, errors.WithCode(errors.AuditWrite))
		}
		v.logger.Warn("unable to record audit entry", "op", op, "action", action, "error", err)
	}
	return nil
}

// The undo helpers compensate a persisted mutation whose success audit
// entry could not be written.  When the policy demands auditing of all
// access a mutation without its entry must not survive, so the mutation is
// rolled back and the operation reports the audit failure.  An undo that
// itself fails is logged; it cannot be surfaced past the audit error.

func (v *Vault) undoCreate(ctx context.Context, publicId string) {
	const op = "vault.(Vault).undoCreate"
	if _, err := v.repo.DeleteCredential(ctx, publicId); err != nil {
		v.logger.Error("unable to undo credential create after audit failure",
			"op", op, "credential_id", publicId, "error", err)
	}
}

func (v *Vault) undoUpdate(ctx context.Context, prior *store.Credential, version uint32, fieldMaskPaths []string) {
	const op = "vault.(Vault).undoUpdate"
	if prior == nil {
		return
	}
	if _, _, err := v.repo.UpdateCredential(ctx, prior, version, fieldMaskPaths); err != nil {
		v.logger.Error("unable to undo credential update after audit failure",
			"op", op, "credential_id", prior.PublicId, "error", err)
	}
}

func (v *Vault) undoDelete(ctx context.Context, prior *store.Credential) {
	const op = "vault.(Vault).undoDelete"
	if prior == nil {
		return
	}
	if err := v.repo.reinsertCredential(ctx, prior); err != nil {
		v.logger.Error("unable to undo credential delete after audit failure",
			"op", op, "credential_id", prior.PublicId, "error", err)
	}
}

func (v *Vault) checkRate(ctx context.Context, p Principal, resource string, action audit.Action, resourceId string) error {
	const op = "vault.(Vault).checkRate"
	if v.limiter == nil {
		return nil
	}
	allowed, _, err := v.limiter.Allow(resource, action.String(), "", p.Id)
	if err != nil {
		return errors.Wrap(ctx, err, op)
	}
	if !allowed {
		if aerr := v.recordAudit(ctx, p, action, resourceId, audit.OutcomeFailure, "rate limited"); aerr != nil {
			return errors.Wrap(ctx, aerr, op)
		}
		return errors.New(ctx, errors.RateLimited, op, "rate limit exceeded")
	}
	return nil
}

func (v *Vault) emit(ctx context.Context, t event.Type, p event.Payload) {
	if v.events == nil {
		return
	}
	v.events.Send(ctx, t, p)
}

func errDetail(err error) string {
	var e *errors.Err
	if errors.As(err, &e) {
		return fmt.Sprintf("%s: error #%d", e.Info().Message, e.Code)
	}
	return "unknown error"
}

func scrub(c *store.Credential) *store.Credential {
	out := c.Clone()
	out.Ciphertext = nil
	out.KeySalt = nil
	out.KeyIterations = 0
	return out
}

func daysUntilExpiration(now time.Time, expire *time.Time) int {
	if expire == nil {
		return -1
	}
	days := int(math.Ceil(expire.Sub(now).Hours() / 24))
	if days < 0 {
		days = 0
	}
	return days
}
