package loginsession

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInMemoryRepoRoundTrip(t *testing.T) {
	repo := NewInMemoryRepo()

	require.NoError(t, repo.Upsert("s1", Session{Username: "alice", CreatedAt: time.Now()}))

	session, err := repo.Get("s1")
	require.NoError(t, err)
	require.Equal(t, "alice", session.Username)

	require.NoError(t, repo.Delete("s1"))
	_, err = repo.Get("s1")
	require.ErrorIs(t, err, ErrSessionNotFound)
}
