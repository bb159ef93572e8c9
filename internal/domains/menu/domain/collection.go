package domain

import (
	"errors"
	"strings"
)

// ErrEmptyOwner is returned when a collection is requested without an identity.
var ErrEmptyOwner = errors.New("menu collection owner must not be empty")

// Collection identifies the per-identity menu collection inside the store.
type Collection struct {
	Namespace string
	Owner     string
}

// NewCollection validates the owner and builds the collection reference.
func NewCollection(namespace, owner string) (Collection, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return Collection{}, ErrEmptyOwner
	}
	return Collection{Namespace: strings.TrimSpace(namespace), Owner: owner}, nil
}

// Path renders users/{owner}/menuItems, prefixed by artifacts/{namespace}/ when set.
func (c Collection) Path() string {
	path := "users/" + c.Owner + "/menuItems"
	if c.Namespace == "" {
		return path
	}
	return "artifacts/" + c.Namespace + "/" + path
}
