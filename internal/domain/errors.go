package domain

import "errors"

var (
	// ErrUsernameNotFound is returned when the credential table has no such user.
	ErrUsernameNotFound = errors.New("username not found")
	// ErrIncorrectPassword is returned when the user exists but the password differs.
	ErrIncorrectPassword = errors.New("incorrect password")

	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")

	ErrUnknownModel     = errors.New("unknown model")
	ErrIndexOutOfRange  = errors.New("entry index out of range")
	ErrCorpusMisaligned = errors.New("candidate table length differs from input corpus")
	ErrInvalidScore     = errors.New("scores must be integers between 1 and 5")
	ErrMissingTitle     = errors.New("entry has no title")
	ErrLedgerCollision  = errors.New("ledger file shared by two user/model pairs")

	ErrUnknownCategory  = errors.New("unknown asset category")
	ErrAssetDirNotFound = errors.New("images folder not found")
	ErrAssetNotFound    = errors.New("asset not found")
	ErrUnknownPage      = errors.New("unknown page")
)
