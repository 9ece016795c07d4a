//go:build !windows

package protect

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

// keyProtector substitutes for DPAPI on platforms without an OS data
// protection service.
//
// Trust model of the substitute: a random master key is kept in a file per
// scope, readable only by the owner. The current-user key lives under the
// user's config directory (mode 0600), so protection reduces to file
// ownership, the same boundary DPAPI enforces with user credentials. The
// machine key lives under /var/lib and is created by whoever first
// protects at machine scope; any account that can read it can unprotect,
// which mirrors DPAPI's any-account-on-this-machine semantics. An
// attacker who can read both the key file and the sealed data has won,
// exactly as an attacker running as the user has with DPAPI.
//
// Sealing is NaCl secretbox. The per-blob key is derived with scrypt from
// the master key plus caller entropy and a random salt, so entropy is
// never stored and low-entropy caller secrets resist brute force.
type keyProtector struct {
	userDir    string
	machineDir string
}

var _ Protector = (*keyProtector)(nil)

func newProtector(cfg Config) Protector {
	return &keyProtector{userDir: cfg.KeyDir, machineDir: cfg.KeyDir}
}

// blobMagic identifies sealed blobs and their layout version.
var blobMagic = []byte("scp1")

const (
	keySize   = 32
	saltSize  = 32
	nonceSize = 24

	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// machineKeyDir holds the machine-scope key by default.
const machineKeyDir = "/var/lib/safe-config"

func (p *keyProtector) Protect(plaintext []byte, scope Scope, entropy []byte) ([]byte, error) {
	if !scope.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidScope, int(scope))
	}
	master, err := p.masterKey(scope, true)
	if err != nil {
		return nil, err
	}
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("protect: generate salt: %w", err)
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("protect: generate nonce: %w", err)
	}
	key, err := deriveKey(master, entropy, salt)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(blobMagic)+saltSize+nonceSize+len(plaintext)+secretbox.Overhead)
	out = append(out, blobMagic...)
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plaintext, &nonce, key), nil
}

func (p *keyProtector) Unprotect(data []byte, scope Scope, entropy []byte) ([]byte, error) {
	if !scope.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidScope, int(scope))
	}
	header := len(blobMagic) + saltSize + nonceSize
	if len(data) < header+secretbox.Overhead || !bytes.HasPrefix(data, blobMagic) {
		return nil, fmt.Errorf("%w: not a sealed blob", ErrUnprotect)
	}
	master, err := p.masterKey(scope, false)
	if err != nil {
		return nil, err
	}
	salt := data[len(blobMagic) : len(blobMagic)+saltSize]
	var nonce [nonceSize]byte
	copy(nonce[:], data[len(blobMagic)+saltSize:header])
	key, err := deriveKey(master, entropy, salt)
	if err != nil {
		return nil, err
	}
	plain, ok := secretbox.Open(nil, data[header:], &nonce, key)
	if !ok {
		return nil, fmt.Errorf("%w: wrong scope, entropy, or key", ErrUnprotect)
	}
	return plain, nil
}

func deriveKey(master, entropy, salt []byte) (*[keySize]byte, error) {
	secret := make([]byte, 0, len(master)+len(entropy))
	secret = append(secret, master...)
	secret = append(secret, entropy...)
	raw, err := scrypt.Key(secret, salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("protect: derive key: %w", err)
	}
	var key [keySize]byte
	copy(key[:], raw)
	return &key, nil
}

func (p *keyProtector) keyPath(scope Scope) (string, error) {
	switch scope {
	case CurrentUser:
		dir := p.userDir
		if dir == "" {
			base, err := os.UserConfigDir()
			if err != nil {
				return "", fmt.Errorf("protect: resolve user config dir: %w", err)
			}
			dir = filepath.Join(base, "safe-config")
		}
		return filepath.Join(dir, "user.key"), nil
	case LocalMachine:
		dir := p.machineDir
		if dir == "" {
			dir = machineKeyDir
		}
		return filepath.Join(dir, "machine.key"), nil
	}
	return "", fmt.Errorf("%w: %d", ErrInvalidScope, int(scope))
}

// masterKey reads the key file for scope, creating it first when create is
// set. Creation is exclusive so two processes racing on first use agree on
// one key.
func (p *keyProtector) masterKey(scope Scope, create bool) ([]byte, error) {
	path, err := p.keyPath(scope)
	if err != nil {
		return nil, err
	}
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != keySize {
			return nil, fmt.Errorf("protect: key file %s: unexpected size %d", path, len(key))
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("protect: read key file: %w", err)
	}
	if !create {
		return nil, fmt.Errorf("%w: %s", ErrNoKey, scope)
	}
	key = make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("protect: generate key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("protect: create key dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			// Lost the creation race; use the winner's key.
			return p.masterKey(scope, false)
		}
		return nil, fmt.Errorf("protect: create key file: %w", err)
	}
	if _, err := f.Write(key); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("protect: write key file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("protect: write key file: %w", err)
	}
	return key, nil
}
