package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// TokenSource mints trigger instance ids for player-initiated actions.
// Clock triggers derive their ids from the slot key; player actions have
// no natural slot identity, so they draw from a source instead.
type TokenSource interface {
	Next(scope string) string
}

// UUIDTokenSource is the production source.
type UUIDTokenSource struct{}

// Next returns scope@<random uuid>.
func (UUIDTokenSource) Next(scope string) string {
	return scope + "@" + uuid.NewString()
}

// SequentialTokenSource mints predictable ids for tests and replayable
// scenario runs.
type SequentialTokenSource struct {
	n int
}

// Next returns scope@<n>, counting from 1.
func (s *SequentialTokenSource) Next(scope string) string {
	s.n++
	return fmt.Sprintf("%s@%d", scope, s.n)
}
