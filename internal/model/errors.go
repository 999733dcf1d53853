package model

import "github.com/rotisserie/eris"

// Sentinel errors shared by every stage. Wrap them with eris.Wrapf to add
// context; test with the Is helpers below.
var (
	// ErrValidation marks a missing column or a malformed upload. The
	// current step halts; earlier session state is kept.
	ErrValidation = eris.New("validation failed")

	// ErrEmptyResult marks a projection or filter that produced no rows
	// where data was expected.
	ErrEmptyResult = eris.New("empty result")

	// ErrSessionNotFound is returned by stores for an unknown session id.
	ErrSessionNotFound = eris.New("session not found")
)

// IsValidation reports whether err wraps ErrValidation.
func IsValidation(err error) bool { return eris.Is(err, ErrValidation) }

// IsEmptyResult reports whether err wraps ErrEmptyResult.
func IsEmptyResult(err error) bool { return eris.Is(err, ErrEmptyResult) }

// IsSessionNotFound reports whether err wraps ErrSessionNotFound.
func IsSessionNotFound(err error) bool { return eris.Is(err, ErrSessionNotFound) }
