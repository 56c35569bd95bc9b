// Package bridge carries the latest generated data from the generation
// controller to the results controller. Every write replaces the previous
// snapshot of its session; there is no merging or conflict detection.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrNotFound is returned by a Store when a session has no snapshot.
var ErrNotFound = errors.New("bridge snapshot not found")

// Store persists one opaque payload per session.
type Store interface {
	Put(ctx context.Context, session string, payload []byte) error
	Get(ctx context.Context, session string) ([]byte, error)
}

var sessionPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,128}$`)

func validateSession(session string) error {
	if !sessionPattern.MatchString(session) || session == "." || session == ".." {
		return fmt.Errorf("invalid bridge session %q", session)
	}
	return nil
}
