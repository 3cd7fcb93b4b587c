package audit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-dbw"
	wrapping "github.com/hashicorp/go-kms-wrapping/v2"
	wrappingCrypto "github.com/hashicorp/go-kms-wrapping/v2/extras/crypto"
	"github.com/operand/credvault/internal/db"
	"github.com/operand/credvault/internal/errors"
	"github.com/operand/credvault/internal/policy"
)

// Log is the tamper-evident audit trail.  Every entry carries an hmac over
// its own fields chained to the hmac of the entry recorded before it, so
// removing or editing a stored entry breaks verification of its successor.
type Log struct {
	reader      dbw.Reader
	writer      dbw.Writer
	hmacWrapper wrapping.Wrapper

	// l serializes record operations so the hmac chain matches insert order.
	l        sync.Mutex
	lastHmac string
}

// NewLog wires an audit log over an open database.  The wrapper keys the
// entry hmac chain and must stay stable for the life of the trail.
func NewLog(ctx context.Context, conn *dbw.DB, hmacWrapper wrapping.Wrapper) (*Log, error) {
	const op = "audit.NewLog"
	if conn == nil {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing database connection")
	}
	if hmacWrapper == nil {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing hmac wrapper")
	}
	rw := dbw.New(conn)
	l := &Log{
		reader:      rw,
		writer:      rw,
		hmacWrapper: hmacWrapper,
	}
	// resume the chain from the most recent entry, if any
	var latest []*Entry
	if err := rw.SearchWhere(ctx, &latest, "", nil,
		dbw.WithOrder("create_time desc, public_id desc"), dbw.WithLimit(1)); err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	if len(latest) > 0 {
		l.lastHmac = latest[0].EntryHmac
	}
	return l, nil
}

// Record appends an entry to the trail.  The entry's id, timestamp and hmac
// are assigned here; callers only describe what happened.  Any failure is
// reported as an AuditWrite error so callers can decide whether the
// triggering operation must fail with it.
func (l *Log) Record(ctx context.Context, e *Entry) error {
	const op = "audit.(Log).Record"
	if e == nil {
		return errors.New(ctx, errors.InvalidParameter, op, "missing entry")
	}
	id, err := db.NewPublicId(ctx, EntryPrefix)
	if err != nil {
		return errors.Wrap(ctx, err, op, errors.WithCode(errors.AuditWrite))
	}
	e.PublicId = id
	e.CreateTime = time.Now().UTC()

	l.l.Lock()
	defer l.l.Unlock()
	hmac, err := l.entryHmac(ctx, e, l.lastHmac)
	if err != nil {
		return errors.Wrap(ctx, err, op, errors.WithCode(errors.AuditWrite))
	}
	e.EntryHmac = hmac
	if err := l.writer.Create(ctx, e); err != nil {
		return errors.Wrap(ctx, err, op, errors.WithCode(errors.AuditWrite), errors.WithMsg("unable to append audit entry"))
	}
	l.lastHmac = e.EntryHmac
	return nil
}

// Query returns entries ordered by create time ascending.  Supported
// options: WithPrincipalId, WithAction, WithStartTime, WithEndTime,
// WithLimit.  Each call builds its criteria from scratch.
func (l *Log) Query(ctx context.Context, opt ...Option) ([]*Entry, error) {
	const op = "audit.(Log).Query"
	opts := getOpts(opt...)
	var conds []string
	var args []any
	if opts.withPrincipalId != "" {
		conds = append(conds, "principal_id = ?")
		args = append(args, opts.withPrincipalId)
	}
	if opts.withAction != "" {
		if !opts.withAction.Valid() {
			return nil, errors.New(ctx, errors.InvalidParameter, op, "invalid action filter")
		}
		conds = append(conds, "action = ?")
		args = append(args, opts.withAction)
	}
	if opts.withStartTime != nil {
		conds = append(conds, "create_time >= ?")
		args = append(args, opts.withStartTime.UTC())
	}
	if opts.withEndTime != nil {
		conds = append(conds, "create_time < ?")
		args = append(args, opts.withEndTime.UTC())
	}
	limit := opts.withLimit
	if limit == 0 {
		limit = -1
	}
	var entries []*Entry
	if err := l.reader.SearchWhere(ctx, &entries, strings.Join(conds, " and "), args,
		dbw.WithOrder("create_time asc, public_id asc"), dbw.WithLimit(limit)); err != nil {
		return nil, errors.Wrap(ctx, err, op)
	}
	return entries, nil
}

// PurgeExpired deletes entries older than the retention window and returns
// the purged count.  This is the log's only deletion path and the purge is
// itself recorded.
func (l *Log) PurgeExpired(ctx context.Context, retentionDays int) (int, error) {
	const op = "audit.(Log).PurgeExpired"
	if retentionDays <= 0 {
		return db.NoRowsAffected, errors.New(ctx, errors.InvalidParameter, op, "retention days must be positive")
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	rowsDeleted, err := l.writer.Exec(ctx, "delete from audit_entry where create_time < ?", []any{cutoff})
	if err != nil {
		return db.NoRowsAffected, errors.Wrap(ctx, err, op)
	}
	e, err := NewEntry(ctx, "system", policy.UnknownRole, ActionPurge, "*", OutcomeSuccess,
		WithDetail(fmt.Sprintf("purged %d audit entries past %d day retention", rowsDeleted, retentionDays)))
	if err != nil {
		return rowsDeleted, errors.Wrap(ctx, err, op)
	}
	if err := l.Record(ctx, e); err != nil {
		return rowsDeleted, errors.Wrap(ctx, err, op)
	}
	return rowsDeleted, nil
}

// VerifyChain recomputes the hmac chain over the stored trail and returns
// the number of entries verified.  The oldest stored entry anchors the
// chain; any later entry whose hmac does not match reports IntegrityCheck.
func (l *Log) VerifyChain(ctx context.Context) (int, error) {
	const op = "audit.(Log).VerifyChain"
	entries, err := l.Query(ctx)
	if err != nil {
		return 0, errors.Wrap(ctx, err, op)
	}
	if len(entries) == 0 {
		return 0, nil
	}
	prev := entries[0].EntryHmac
	for i, e := range entries[1:] {
		want, err := l.entryHmac(ctx, e, prev)
		if err != nil {
			return i + 1, errors.Wrap(ctx, err, op)
		}
		if want != e.EntryHmac {
			return i + 1, errors.New(ctx, errors.IntegrityCheck, op,
				fmt.Sprintf("audit chain broken at %q", e.PublicId))
		}
		prev = e.EntryHmac
	}
	return len(entries), nil
}

// EntryPrefix is the public id prefix for audit entries.
const EntryPrefix = "audit"

func (l *Log) entryHmac(ctx context.Context, e *Entry, prev string) (string, error) {
	payload := strings.Join([]string{
		prev,
		e.PublicId,
		e.CreateTime.UTC().Format(time.RFC3339Nano),
		e.PrincipalId,
		e.PrincipalRole,
		e.Action.String(),
		e.ResourceId,
		e.Outcome.String(),
		e.Detail,
	}, "|")
	return wrappingCrypto.HmacSha256(ctx, []byte(payload), l.hmacWrapper,
		wrappingCrypto.WithPrefix("hmac-sha256:"), wrappingCrypto.WithBase64Encoding())
}
