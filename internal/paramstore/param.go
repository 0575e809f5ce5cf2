// Package paramstore reads and writes AWS SSM Parameter Store parameters and
// plans bulk renames over them.
package paramstore

import (
	"context"
	"errors"
	"strings"
)

// Parameter types accepted by SSM.
const (
	TypeString       = "String"
	TypeStringList   = "StringList"
	TypeSecureString = "SecureString"
)

// ErrNotFound is returned when a named parameter does not exist.
var ErrNotFound = errors.New("parameter not found")

// ErrAlreadyExists is returned by Put when overwrite is false and the name is taken.
var ErrAlreadyExists = errors.New("parameter already exists")

// Parameter is one decrypted parameter.
type Parameter struct {
	Name        string
	Type        string
	Value       string
	Description string
}

// Store is the parameter store as the commands see it.
type Store interface {
	// ListByPath returns every parameter below path, recursively and decrypted.
	ListByPath(ctx context.Context, path string) ([]Parameter, error)
	// Describe returns the description of a parameter.
	Describe(ctx context.Context, name string) (string, error)
	Put(ctx context.Context, p Parameter, overwrite bool) error
	Delete(ctx context.Context, name string) error
}

// NormalizePath ensures a hierarchy path starts with '/'.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
