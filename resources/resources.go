package resources

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrNoSuchDevice     = errors.New("no such device")
	ErrDeviceManifest   = errors.New("device ids and addresses must have the same length")
)

// Resource is an end-user account owning devices, authenticated by
// username/password. Distinct from the OAuth client application.
//
// DeviceIDs and DeviceAddresses are parallel lists: the address for a
// device is the entry at the same index as its ID.
type Resource struct {
	Username        string   `json:"username"`
	PasswordHash    string   `json:"-"` // never serialize
	DeviceIDs       []string `json:"device_ids"`
	DeviceAddresses []string `json:"device_addresses"`
}

// Validate checks the parallel-list invariant.
func (r *Resource) Validate() error {
	if len(r.DeviceIDs) != len(r.DeviceAddresses) {
		return ErrDeviceManifest
	}
	return nil
}

// HasDevice reports whether deviceID belongs to this resource.
func (r *Resource) HasDevice(deviceID string) bool {
	for _, id := range r.DeviceIDs {
		if id == deviceID {
			return true
		}
	}
	return false
}

// AddressFor resolves a device ID to its bus address through the
// parallel-list mapping.
func (r *Resource) AddressFor(deviceID string) (string, error) {
	for i, id := range r.DeviceIDs {
		if id == deviceID {
			if i >= len(r.DeviceAddresses) {
				return "", ErrDeviceManifest
			}
			return r.DeviceAddresses[i], nil
		}
	}
	return "", ErrNoSuchDevice
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
