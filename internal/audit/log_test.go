package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/hashicorp/go-dbw"
	"github.com/operand/credvault/internal/crypto"
	"github.com/operand/credvault/internal/db"
	"github.com/operand/credvault/internal/errors"
	"github.com/operand/credvault/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLog(t *testing.T) (*Log, *dbw.DB) {
	t.Helper()
	ctx := context.Background()
	conn := db.TestSetup(t)
	wrapper, err := crypto.NewCipher(ctx, bytes.Repeat([]byte("k"), 32))
	require.NoError(t, err)
	l, err := NewLog(ctx, conn, wrapper)
	require.NoError(t, err)
	return l, conn
}

func testEntry(t *testing.T, principal string, action Action, outcome Outcome, opt ...Option) *Entry {
	t.Helper()
	e, err := NewEntry(context.Background(), principal, policy.Operator, action, "cred_1234567890", outcome, opt...)
	require.NoError(t, err)
	return e
}

func TestNewEntry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name       string
		principal  string
		action     Action
		resourceId string
		outcome    Outcome
		wantErr    errors.Code
	}{
		{
			name:       "valid",
			principal:  "alice",
			action:     ActionCreate,
			resourceId: "cred_1234567890",
			outcome:    OutcomeSuccess,
		},
		{
			name:      "missing-principal",
			action:    ActionCreate,
			outcome:   OutcomeSuccess,
			wantErr:   errors.InvalidParameter,
		},
		{
			name:      "invalid-action",
			principal: "alice",
			action:    Action("reboot"),
			outcome:   OutcomeSuccess,
			wantErr:   errors.InvalidParameter,
		},
		{
			name:      "invalid-outcome",
			principal: "alice",
			action:    ActionRead,
			outcome:   Outcome("maybe"),
			wantErr:   errors.InvalidParameter,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEntry(ctx, tt.principal, policy.Viewer, tt.action, tt.resourceId, tt.outcome)
			if tt.wantErr != errors.Unknown {
				require.Error(t, err)
				assert.True(t, errors.Match(errors.T(tt.wantErr), err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.resourceId, e.ResourceId)
		})
	}

	t.Run("empty-resource-becomes-star", func(t *testing.T) {
		e, err := NewEntry(ctx, "alice", policy.Admin, ActionList, "", OutcomeSuccess)
		require.NoError(t, err)
		assert.Equal(t, "*", e.ResourceId)
	})
}

func TestSecret_Redacts(t *testing.T) {
	t.Parallel()
	s := Secret("hunter2")
	assert.Equal(t, "[REDACTED: secret]", s.String())
	assert.Equal(t, "[REDACTED: secret]", fmt.Sprintf("%s", s))
	assert.Equal(t, "[REDACTED: secret]", fmt.Sprintf("%v", s))
	assert.Equal(t, "[REDACTED: secret]", fmt.Sprintf("%#v", s))
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `"[REDACTED: secret]"`, string(b))
	assert.NotContains(t, string(b), "hunter2")
}

func TestLog_Record(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, _ := testLog(t)

	e1 := testEntry(t, "alice", ActionCreate, OutcomeSuccess)
	e2 := testEntry(t, "bob", ActionRead, OutcomeDenied)
	e3 := testEntry(t, "alice", ActionRotate, OutcomeFailure)
	for _, e := range []*Entry{e1, e2, e3} {
		require.NoError(t, l.Record(ctx, e))
		assert.NotEmpty(t, e.PublicId)
		assert.NotEmpty(t, e.EntryHmac)
		assert.False(t, e.CreateTime.IsZero())
	}
	assert.NotEqual(t, e1.EntryHmac, e2.EntryHmac)

	got, err := l.Query(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, e1.PublicId, got[0].PublicId)
	assert.Equal(t, e3.PublicId, got[2].PublicId)

	verified, err := l.VerifyChain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, verified)
}

func TestLog_AppendOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, conn := testLog(t)

	e := testEntry(t, "alice", ActionCreate, OutcomeSuccess)
	require.NoError(t, l.Record(ctx, e))

	rw := dbw.New(conn)
	e.Detail = "rewritten history"
	_, err := rw.Update(ctx, e, []string{"Detail"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append-only")
}

func TestLog_VerifyChain_Tamper(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, conn := testLog(t)

	var entries []*Entry
	for i := 0; i < 3; i++ {
		e := testEntry(t, "alice", ActionRead, OutcomeSuccess)
		require.NoError(t, l.Record(ctx, e))
		entries = append(entries, e)
	}

	// edit a stored entry behind the log's back
	rw := dbw.New(conn)
	_, err := rw.Exec(ctx, "update audit_entry set detail = ? where public_id = ?",
		[]any{"rewritten", entries[1].PublicId})
	require.NoError(t, err)

	_, err = l.VerifyChain(ctx)
	require.Error(t, err)
	assert.True(t, errors.Match(errors.T(errors.IntegrityCheck), err))
}

func TestLog_Query_Filters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, _ := testLog(t)

	require.NoError(t, l.Record(ctx, testEntry(t, "alice", ActionCreate, OutcomeSuccess)))
	require.NoError(t, l.Record(ctx, testEntry(t, "bob", ActionRead, OutcomeSuccess)))
	require.NoError(t, l.Record(ctx, testEntry(t, "alice", ActionDelete, OutcomeFailure)))

	got, err := l.Query(ctx, WithPrincipalId("alice"))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = l.Query(ctx, WithAction(ActionRead))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bob", got[0].PrincipalId)

	got, err = l.Query(ctx, WithPrincipalId("alice"), WithAction(ActionDelete))
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = l.Query(ctx, WithEndTime(time.Now().Add(-time.Hour)))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = l.Query(ctx, WithStartTime(time.Now().Add(-time.Hour)), WithLimit(2))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = l.Query(ctx, WithAction(Action("reboot")))
	require.Error(t, err)
}

func TestLog_PurgeExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, conn := testLog(t)

	old := testEntry(t, "alice", ActionCreate, OutcomeSuccess)
	require.NoError(t, l.Record(ctx, old))
	recent := testEntry(t, "alice", ActionRead, OutcomeSuccess)
	require.NoError(t, l.Record(ctx, recent))

	// age the first entry past the retention window
	rw := dbw.New(conn)
	_, err := rw.Exec(ctx, "update audit_entry set create_time = ? where public_id = ?",
		[]any{time.Now().UTC().AddDate(0, 0, -400), old.PublicId})
	require.NoError(t, err)

	purged, err := l.PurgeExpired(ctx, 365)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	got, err := l.Query(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2) // the survivor plus the purge record
	assert.Equal(t, recent.PublicId, got[0].PublicId)
	assert.Equal(t, ActionPurge, got[1].Action)
	assert.Equal(t, "system", got[1].PrincipalId)

	_, err = l.PurgeExpired(ctx, 0)
	require.Error(t, err)
	assert.True(t, errors.Match(errors.T(errors.InvalidParameter), err))
}

func TestNewLog_ResumesChain(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, conn := testLog(t)

	require.NoError(t, l.Record(ctx, testEntry(t, "alice", ActionCreate, OutcomeSuccess)))

	wrapper, err := crypto.NewCipher(ctx, bytes.Repeat([]byte("k"), 32))
	require.NoError(t, err)
	l2, err := NewLog(ctx, conn, wrapper)
	require.NoError(t, err)
	require.NoError(t, l2.Record(ctx, testEntry(t, "bob", ActionRead, OutcomeSuccess)))

	verified, err := l2.VerifyChain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, verified)
}
