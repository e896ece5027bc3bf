package ports

import (
	"context"
	"errors"
)

// ErrSecretNotFound is returned by Get when the backend has no entry for the
// key. Delete on a missing key is not an error.
var ErrSecretNotFound = errors.New("secret not found")

type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
