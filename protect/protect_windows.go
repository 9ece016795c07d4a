//go:build windows

package protect

import (
	"fmt"

	"github.com/billgraziano/dpapi"
)

// dpapiProtector seals data with the Windows Data Protection API. The OS
// derives and holds the keys per user account or per machine; nothing is
// stored by this package.
type dpapiProtector struct{}

var _ Protector = dpapiProtector{}

func newProtector(Config) Protector {
	return dpapiProtector{}
}

func (dpapiProtector) Protect(plaintext []byte, scope Scope, entropy []byte) ([]byte, error) {
	if !scope.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidScope, int(scope))
	}
	var sealed []byte
	var err error
	switch {
	case scope == LocalMachine && len(entropy) > 0:
		sealed, err = dpapi.EncryptBytesMachineLocalEntropy(plaintext, entropy)
	case scope == LocalMachine:
		sealed, err = dpapi.EncryptBytesMachineLocal(plaintext)
	case len(entropy) > 0:
		sealed, err = dpapi.EncryptBytesEntropy(plaintext, entropy)
	default:
		sealed, err = dpapi.EncryptBytes(plaintext)
	}
	if err != nil {
		return nil, fmt.Errorf("protect: %w", err)
	}
	return sealed, nil
}

func (dpapiProtector) Unprotect(data []byte, scope Scope, entropy []byte) ([]byte, error) {
	if !scope.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidScope, int(scope))
	}
	// DPAPI records the protection scope inside the blob, so decryption
	// takes no scope flag.
	var plain []byte
	var err error
	if len(entropy) > 0 {
		plain, err = dpapi.DecryptBytesEntropy(data, entropy)
	} else {
		plain, err = dpapi.DecryptBytes(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnprotect, err)
	}
	return plain, nil
}
