package pcfg

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrParseFailure is matched by every error returned when no derivation spans
// the whole sentence
var ErrParseFailure = errors.New("no parse spans the sentence")

// ParseError describes where an engine gave up
type ParseError struct {
	Algorithm Algorithm

	// Position is the index of the token that couldn't be consumed, or -1 when
	// the chart was built completely but holds no full derivation
	Position int
	Token    string

	Reason string
}

func (e *ParseError) Error() string {
	if e.Position >= 0 && e.Token != "" {
		return fmt.Sprintf("%s: %s at token %d '%s'", e.Algorithm, e.Reason, e.Position, e.Token)
	}
	return fmt.Sprintf("%s: %s", e.Algorithm, e.Reason)
}

// Is makes errors.Is(err, ErrParseFailure) hold
func (e *ParseError) Is(target error) bool {
	return target == ErrParseFailure
}

func newParseError(algorithm Algorithm, reason string) *ParseError {
	return &ParseError{Algorithm: algorithm, Position: -1, Reason: reason}
}
