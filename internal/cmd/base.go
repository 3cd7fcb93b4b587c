package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-rate"
	"github.com/mitchellh/cli"
	"github.com/operand/credvault/internal/audit"
	"github.com/operand/credvault/internal/crypto"
	"github.com/operand/credvault/internal/db"
	"github.com/operand/credvault/internal/errors"
	"github.com/operand/credvault/internal/event"
	"github.com/operand/credvault/internal/policy"
	"github.com/operand/credvault/internal/vault"
)

// auditHmacSalt keys the audit chain HMAC derivation.  It is fixed so the
// chain stays verifiable across process restarts with the same master
// secret.
var auditHmacSalt = []byte("credvault-audit-hmac")

// server holds everything a command needs after setup: the wired vault, the
// caller's principal, and the resources to release on the way out.
type server struct {
	conf      *Config
	logger    hclog.Logger
	vault     *vault.Vault
	log       *audit.Log
	principal vault.Principal

	closers []io.Closer
}

// baseCommand is embedded by every command and carries the UI plus lazy
// server setup.
type baseCommand struct {
	UI cli.Ui
}

func (c *baseCommand) setup(ctx context.Context) (*server, error) {
	const op = "cmd.(baseCommand).setup"
	conf, err := LoadConfig(ctx)
	if err != nil {
		return nil, err
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "credvault",
		Level: hclog.LevelFromString(conf.LogLevel),
	})

	p := policy.DevPolicy(ctx)
	if conf.PolicyPath != "" {
		p, err = policy.Load(ctx, conf.PolicyPath)
		if err != nil {
			return nil, err
		}
	}

	s := &server{
		conf:   conf,
		logger: logger,
		principal: vault.Principal{
			Id:   conf.Principal,
			Role: policy.RoleMap[conf.Role],
		},
	}

	conn, err := db.Open(ctx, conf.DatabaseDialect, conf.DatabaseUrl)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, closerFn(func() error { return conn.Close(ctx) }))
	if err := db.CreateSchema(ctx, conn); err != nil {
		s.Shutdown()
		return nil, err
	}

	hmacKey, err := crypto.DeriveKey(ctx, []byte(conf.MasterSecret), auditHmacSalt, p.KeyIterations())
	if err != nil {
		s.Shutdown()
		return nil, err
	}
	hmacWrapper, err := crypto.NewCipher(ctx, hmacKey)
	if err != nil {
		s.Shutdown()
		return nil, err
	}

	s.log, err = audit.NewLog(ctx, conn, hmacWrapper)
	if err != nil {
		s.Shutdown()
		return nil, err
	}
	repo, err := vault.NewRepository(ctx, conn)
	if err != nil {
		s.Shutdown()
		return nil, err
	}

	var notification io.Writer = os.Stderr
	if conf.EventPath != "" {
		f, err := os.OpenFile(conf.EventPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			s.Shutdown()
			return nil, errors.Wrap(ctx, err, op)
		}
		s.closers = append(s.closers, f)
		notification = f
	}
	broker, err := event.NewBroker(ctx, logger, hmacWrapper, notification, nil)
	if err != nil {
		s.Shutdown()
		return nil, err
	}

	limiter, err := rate.NewLimiter(p.Limits(), conf.RateLimitMaxEntries)
	if err != nil {
		s.Shutdown()
		return nil, errors.Wrap(ctx, err, op)
	}

	s.vault, err = vault.New(ctx, repo, p, s.log, []byte(conf.MasterSecret),
		vault.WithLogger(logger),
		vault.WithEventBroker(broker),
		vault.WithRateLimiter(limiter),
	)
	if err != nil {
		s.Shutdown()
		return nil, err
	}
	return s, nil
}

// Shutdown releases the server's resources, aggregating any errors.
func (s *server) Shutdown() error {
	var mErr *multierror.Error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			mErr = multierror.Append(mErr, err)
		}
	}
	s.closers = nil
	return mErr.ErrorOrNil()
}

type closerFn func() error

func (f closerFn) Close() error { return f() }

// printErr renders an error for the terminal, including its HTTP status so
// scripted callers can tell denials from missing records.
func (c *baseCommand) printErr(err error) int {
	c.UI.Error(fmt.Sprintf("Error (status %d): %s", errors.StatusCode(err), err.Error()))
	return 1
}
