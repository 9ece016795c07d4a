// Package protect seals byte blobs under an OS-scoped secret so they are
// unreadable to other principals on the same machine.
//
// On Windows the implementation is the Data Protection API: key material is
// derived and held by the operating system per user account or per machine,
// and nothing is stored by this package. On other platforms a per-scope key
// file stands in for the OS facility; the substitute trust model is
// described in the non-Windows implementation file.
//
// Both implementations accept optional entropy: an additional caller-held
// secret folded into protection. Entropy is not stored with the sealed
// data, so blobs sealed with entropy cannot be opened without it.
package protect

import "errors"

// Scope selects which OS principals can open protected data.
type Scope int

const (
	// CurrentUser limits unprotection to the user account that
	// protected the data. This is the default scope.
	CurrentUser Scope = iota

	// LocalMachine allows any account on the same machine to
	// unprotect the data.
	LocalMachine
)

func (s Scope) String() string {
	switch s {
	case CurrentUser:
		return "current-user"
	case LocalMachine:
		return "local-machine"
	}
	return "invalid-scope"
}

func (s Scope) valid() bool {
	return s == CurrentUser || s == LocalMachine
}

var (
	// ErrInvalidScope reports a Scope outside the supported set.
	ErrInvalidScope = errors.New("protect: invalid scope")

	// ErrUnprotect reports sealed data that cannot be opened with the
	// given scope and entropy: a different principal, different entropy,
	// or tampered bytes.
	ErrUnprotect = errors.New("protect: cannot unprotect data")

	// ErrNoKey reports that no key material exists for the requested
	// scope, so the data cannot have been sealed on this machine.
	ErrNoKey = errors.New("protect: no key for scope")
)

// Protector seals and opens byte blobs. Implementations are safe for
// concurrent use.
type Protector interface {
	// Protect seals plaintext under scope. Entropy, when non-empty, is
	// an additional secret required to open the result.
	Protect(plaintext []byte, scope Scope, entropy []byte) ([]byte, error)

	// Unprotect opens data previously sealed by Protect with the same
	// scope and entropy. It fails rather than return wrong plaintext.
	Unprotect(data []byte, scope Scope, entropy []byte) ([]byte, error)
}

// Config adjusts optional protector behavior.
type Config struct {
	// KeyDir overrides the directory holding the per-scope key files on
	// platforms without an OS protection service. Both scopes then keep
	// their keys under this directory. Ignored on Windows, where DPAPI
	// manages all key material. Intended for tests and sandboxes.
	KeyDir string
}

// New returns the protector for the current platform.
func New() Protector {
	return NewWithConfig(Config{})
}

// NewWithConfig returns the platform protector with overrides applied.
func NewWithConfig(cfg Config) Protector {
	return newProtector(cfg)
}
