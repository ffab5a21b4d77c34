// Package directory supplies the roster of people to learn, either from the
// Recurse Center directory API or from a local file.
package directory

import (
	"context"
	"errors"
	"fmt"

	"namegame/internal/models"
)

var (
	// ErrNoToken means no API token is configured for the upstream directory
	ErrNoToken = errors.New("directory token is not configured")
	// ErrUnauthorized means the upstream directory rejected the token
	ErrUnauthorized = errors.New("directory rejected the token")
)

// UpstreamError reports a non-2xx answer from the upstream directory
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("directory returned status %d", e.Status)
}

// Source produces a roster
type Source interface {
	Fetch(ctx context.Context) ([]models.Person, error)
}
