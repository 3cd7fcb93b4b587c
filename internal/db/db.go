package db

import (
	"context"

	"github.com/hashicorp/go-dbw"
	"github.com/operand/credvault/internal/errors"
)

// StdRetryCnt defines a standard retry count for transactions that hit
// optimistic-concurrency conflicts.
const StdRetryCnt = 3

// NoRowsAffected is returned from write operations that touched nothing.
const NoRowsAffected = 0

// NonRetryableFn is a retry matcher for DoTx that treats every error as
// final.  Optimistic-lock conflicts surface to the caller instead of being
// retried inside the transaction.
var NonRetryableFn = func(error) bool { return false }

// Open a long-lived database connection for the given dialect ("sqlite" or
// "postgres") and url.  The caller is responsible for calling Close(ctx) on
// the returned dbw.DB.
func Open(ctx context.Context, dialect, url string) (*dbw.DB, error) {
	const op = "db.Open"
	if url == "" {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing url")
	}
	typ, err := dbw.StringToDbType(dialect)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.InvalidParameter))
	}
	conn, err := dbw.Open(typ, url)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithMsg("unable to open database"))
	}
	return conn, nil
}

// CreateSchema creates the vault's tables.  It's idempotent, so it's safe
// to call on every process start for the embedded sqlite deployment; a
// postgres deployment would instead manage the schema with its own
// migrations.
func CreateSchema(ctx context.Context, conn *dbw.DB) error {
	const op = "db.CreateSchema"
	if conn == nil {
		return errors.New(ctx, errors.InvalidParameter, op, "missing connection")
	}
	rw := dbw.New(conn)
	for _, stmt := range schema {
		if _, err := rw.Exec(ctx, stmt, nil); err != nil {
			return errors.Wrap(ctx, err, op, errors.WithMsg("unable to create schema"))
		}
	}
	return nil
}

var schema = []string{
	`create table if not exists credential_record (
  public_id text not null primary key,
  credential_type text not null,
  ciphertext blob not null,
  key_salt blob not null,
  key_iterations integer not null,
  description text,
  tags text,
  rotation_policy text not null,
  create_time timestamp not null default current_timestamp,
  expire_time timestamp,
  last_rotated_time timestamp,
  version integer not null default 1
)`,
	`create table if not exists audit_entry (
  public_id text not null primary key,
  create_time timestamp not null default current_timestamp,
  principal_id text not null,
  principal_role text not null,
  action text not null,
  resource_id text not null,
  outcome text not null,
  detail text,
  entry_hmac text
)`,
	`create index if not exists audit_entry_create_time_ix on audit_entry (create_time)`,
	`create index if not exists audit_entry_principal_id_ix on audit_entry (principal_id)`,
}
