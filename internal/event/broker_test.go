package event

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/operand/credvault/internal/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_Send(t *testing.T) {
	ctx := context.Background()
	wrapper, err := crypto.NewCipher(ctx, bytes.Repeat([]byte("w"), 32))
	require.NoError(t, err)

	var notification, warehouse bytes.Buffer
	b, err := NewBroker(ctx, hclog.NewNullLogger(), wrapper, &notification, &warehouse)
	require.NoError(t, err)

	b.Send(ctx, CredentialCreated, Payload{
		CredentialId:   "cred_1234567890",
		CredentialType: "api-key",
		PrincipalId:    "alice",
	})

	got := notification.String()
	require.NotEmpty(t, got)
	assert.Contains(t, got, "cred_1234567890")
	assert.Contains(t, got, "credential.created")
	// principal id is classified sensitive and must not appear in the clear
	assert.NotContains(t, got, `"alice"`)
	assert.Contains(t, got, "encrypted:")

	// the warehouse sink gets its own copy; its ciphertexts differ from the
	// notification sink's, but it leaks nothing either
	wh := warehouse.String()
	require.NotEmpty(t, wh)
	assert.Contains(t, wh, "cred_1234567890")
	assert.NotContains(t, wh, `"alice"`)

	// unknown types are dropped without writing anything
	notification.Reset()
	b.Send(ctx, Type("credential.vanished"), Payload{CredentialId: "cred_x"})
	assert.Empty(t, notification.String())
}

func TestBroker_Send_ExpiringCarriesDays(t *testing.T) {
	ctx := context.Background()
	wrapper, err := crypto.NewCipher(ctx, bytes.Repeat([]byte("w"), 32))
	require.NoError(t, err)

	var sink bytes.Buffer
	b, err := NewBroker(ctx, hclog.NewNullLogger(), wrapper, &sink, nil)
	require.NoError(t, err)

	b.Send(ctx, CredentialExpiring, Payload{
		CredentialId:        "cred_1234567890",
		DaysUntilExpiration: 5,
	})
	require.NotEmpty(t, sink.String())
	assert.True(t, strings.Contains(sink.String(), `"days_until_expiration":5`))
}

func TestNewBroker_Validation(t *testing.T) {
	ctx := context.Background()
	wrapper, err := crypto.NewCipher(ctx, bytes.Repeat([]byte("w"), 32))
	require.NoError(t, err)

	var sink bytes.Buffer
	_, err = NewBroker(ctx, nil, wrapper, &sink, nil)
	require.Error(t, err)
	_, err = NewBroker(ctx, hclog.NewNullLogger(), nil, &sink, nil)
	require.Error(t, err)
	_, err = NewBroker(ctx, hclog.NewNullLogger(), wrapper, nil, nil)
	require.Error(t, err)
}
