package errors_test

import (
	"context"
	"testing"

	"github.com/operand/credvault/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	err := errors.New(ctx, errors.VersionMismatch, "vault.(Repository).UpdateCredential", "update version 2 doesn't match db version 3")

	tests := []struct {
		name     string
		template *errors.Template
		err      error
		want     bool
	}{
		{"match-code", errors.T(errors.VersionMismatch), err, true},
		{"match-kind", errors.T(errors.Integrity), err, true},
		{"match-op", errors.T(errors.Op("vault.(Repository).UpdateCredential")), err, true},
		{"wrong-code", errors.T(errors.RecordNotFound), err, false},
		{"nil-err", errors.T(errors.VersionMismatch), nil, false},
		{"not-domain-err", errors.T(errors.VersionMismatch), assert.AnError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Match(tt.template, tt.err))
		})
	}
}
