package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyDevice = errors.New("device id must not be empty")
	ErrEmptyToken  = errors.New("identity token must not be empty")
)

// Identity is an anonymous per-device session. Token scopes every per-user
// collection and stays stable for the device across sign-ins.
type Identity struct {
	Token      string
	DeviceID   string
	IssuedAt   time.Time
	LastSeenAt time.Time
}

// NewIdentity validates and constructs a freshly issued identity.
func NewIdentity(deviceID, token string, now time.Time) (*Identity, error) {
	id := &Identity{
		Token:      strings.TrimSpace(token),
		DeviceID:   strings.TrimSpace(deviceID),
		IssuedAt:   now,
		LastSeenAt: now,
	}
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return id, nil
}

// Validate enforces identity invariants.
func (i *Identity) Validate() error {
	if i.DeviceID == "" {
		return ErrEmptyDevice
	}
	if i.Token == "" {
		return ErrEmptyToken
	}
	return nil
}

// Touch records activity at now.
func (i *Identity) Touch(now time.Time) {
	if now.After(i.LastSeenAt) {
		i.LastSeenAt = now
	}
}
