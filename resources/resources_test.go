package resources

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testResource() *Resource {
	return &Resource{
		Username:        "alice",
		DeviceIDs:       []string{"1", "2"},
		DeviceAddresses: []string{"home/alice/stb1", "home/alice/stb2"},
	}
}

func TestAddressForResolvesByPosition(t *testing.T) {
	res := testResource()

	address, err := res.AddressFor("2")
	require.NoError(t, err)
	require.Equal(t, "home/alice/stb2", address)
}

func TestAddressForUnknownDevice(t *testing.T) {
	res := testResource()

	_, err := res.AddressFor("3")
	require.ErrorIs(t, err, ErrNoSuchDevice)
}

func TestHasDevice(t *testing.T) {
	res := testResource()

	require.True(t, res.HasDevice("1"))
	require.False(t, res.HasDevice("99"))
}

func TestValidateRejectsMismatchedManifest(t *testing.T) {
	res := testResource()
	res.DeviceAddresses = res.DeviceAddresses[:1]

	require.ErrorIs(t, res.Validate(), ErrDeviceManifest)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("pw1")
	require.NoError(t, err)
	require.NotEqual(t, "pw1", hash)

	require.True(t, CheckPasswordHash("pw1", hash))
	require.False(t, CheckPasswordHash("pw2", hash))
}
