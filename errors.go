package safeconfig

import "errors"

// Failures surface as one of a small set of kinds, matched with errors.Is.
// The triggering cause stays wrapped alongside the kind.
var (
	// ErrFolder reports that the configured settings folder cannot be
	// created or resolved. Returned by Err, Load, and Save until a later
	// SetFolder succeeds.
	ErrFolder = errors.New("settings folder unavailable")

	// ErrLoad reports a failure while reading, unprotecting, or decoding
	// the settings file. The in-memory settings are unchanged.
	ErrLoad = errors.New("load settings")

	// ErrSave reports a failure while encoding, protecting, or writing
	// the settings file. A previously saved file is unchanged.
	ErrSave = errors.New("save settings")

	// ErrTypeMismatch reports a typed read whose requested type differs
	// from the stored kind.
	ErrTypeMismatch = errors.New("settings type mismatch")

	// ErrCorrupt reports stored bytes that do not decode as settings:
	// truncation, an unknown version, or an unknown value kind.
	ErrCorrupt = errors.New("corrupt settings data")
)
