package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stbcloud/smarthome-auth/store/inmemory"
	"github.com/stbcloud/smarthome-auth/token"
)

func TestIssueAndValidate(t *testing.T) {
	manager := token.NewManager(inmemory.New().Tokens(), time.Hour)

	pair, err := manager.Issue("client-1", "alice")
	require.NoError(t, err)
	require.Equal(t, "bearer", pair.TokenType)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	validated, err := manager.Validate(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice", validated.ResourceUsername)
	require.Equal(t, "client-1", validated.ClientID)
}

func TestIssueRotatesPreviousPair(t *testing.T) {
	manager := token.NewManager(inmemory.New().Tokens(), time.Hour)

	first, err := manager.Issue("client-1", "alice")
	require.NoError(t, err)

	second, err := manager.Issue("client-1", "alice")
	require.NoError(t, err)

	_, err = manager.Validate(first.AccessToken)
	require.ErrorIs(t, err, token.ErrInvalidToken)

	_, err = manager.Validate(second.AccessToken)
	require.NoError(t, err)
}

func TestIssueRotationIsScopedToClient(t *testing.T) {
	manager := token.NewManager(inmemory.New().Tokens(), time.Hour)

	first, err := manager.Issue("client-1", "alice")
	require.NoError(t, err)

	_, err = manager.Issue("client-2", "alice")
	require.NoError(t, err)

	// A different client's issuance must not evict the first client's pair.
	_, err = manager.Validate(first.AccessToken)
	require.NoError(t, err)
}

func TestValidateExpiredToken(t *testing.T) {
	manager := token.NewManager(inmemory.New().Tokens(), 24*time.Hour)

	pair, err := manager.Issue("client-1", "alice")
	require.NoError(t, err)

	restore := token.NowTimeFunc
	defer func() { token.NowTimeFunc = restore }()
	token.NowTimeFunc = func() time.Time { return time.Now().Add(25 * time.Hour) }

	_, err = manager.Validate(pair.AccessToken)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestValidateUnknownToken(t *testing.T) {
	manager := token.NewManager(inmemory.New().Tokens(), time.Hour)

	_, err := manager.Validate("not-a-token")
	require.ErrorIs(t, err, token.ErrInvalidToken)

	_, err = manager.Validate("")
	require.ErrorIs(t, err, token.ErrInvalidToken)
}
