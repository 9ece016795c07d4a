//go:build !windows

package protect

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/nacl/secretbox"
)

func TestScopeKeySeparation(t *testing.T) {
	p := NewWithConfig(Config{KeyDir: t.TempDir()})

	sealed, err := p.Protect([]byte("user data"), CurrentUser, nil)
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}
	if _, err := p.Unprotect(sealed, LocalMachine, nil); err == nil {
		t.Fatal("machine scope opened user-scoped data")
	}
	got, err := p.Unprotect(sealed, CurrentUser, nil)
	if err != nil {
		t.Fatalf("Unprotect: %v", err)
	}
	if !bytes.Equal(got, []byte("user data")) {
		t.Fatalf("got %q", got)
	}
}

func TestUnprotectWithoutKey(t *testing.T) {
	p := NewWithConfig(Config{KeyDir: t.TempDir()})
	blob := append([]byte(nil), blobMagic...)
	blob = append(blob, make([]byte, saltSize+nonceSize+secretbox.Overhead)...)
	if _, err := p.Unprotect(blob, CurrentUser, nil); !errors.Is(err, ErrNoKey) {
		t.Fatalf("got %v, want ErrNoKey", err)
	}
}

func TestUnprotectRejectsGarbage(t *testing.T) {
	p := NewWithConfig(Config{KeyDir: t.TempDir()})
	sealed, err := p.Protect([]byte("payload"), CurrentUser, nil)
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}

	cases := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: []byte{}},
		{name: "short", data: []byte("scp1")},
		{name: "bad-magic", data: append([]byte("nope"), sealed[4:]...)},
		{name: "truncated", data: sealed[:len(sealed)-1]},
		{name: "flipped-bit", data: flipLastBit(sealed)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := p.Unprotect(c.data, CurrentUser, nil); !errors.Is(err, ErrUnprotect) {
				t.Fatalf("got %v, want ErrUnprotect", err)
			}
		})
	}
}

func flipLastBit(b []byte) []byte {
	out := append([]byte(nil), b...)
	out[len(out)-1] ^= 1
	return out
}

func TestKeyFileCreation(t *testing.T) {
	dir := t.TempDir()
	p := NewWithConfig(Config{KeyDir: dir})

	if _, err := p.Protect([]byte("x"), CurrentUser, nil); err != nil {
		t.Fatalf("Protect: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "user.key"))
	if err != nil {
		t.Fatalf("stat user.key: %v", err)
	}
	if got := info.Mode().Perm(); got != 0600 {
		t.Errorf("user.key mode = %o, want 0600", got)
	}
	if info.Size() != keySize {
		t.Errorf("user.key size = %d, want %d", info.Size(), keySize)
	}

	if _, err := p.Protect([]byte("x"), LocalMachine, nil); err != nil {
		t.Fatalf("Protect machine: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "machine.key")); err != nil {
		t.Fatalf("stat machine.key: %v", err)
	}
}

func TestKeyStableAcrossProtectors(t *testing.T) {
	dir := t.TempDir()

	sealed, err := NewWithConfig(Config{KeyDir: dir}).Protect([]byte("carry over"), CurrentUser, nil)
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}
	got, err := NewWithConfig(Config{KeyDir: dir}).Unprotect(sealed, CurrentUser, nil)
	if err != nil {
		t.Fatalf("Unprotect: %v", err)
	}
	if !bytes.Equal(got, []byte("carry over")) {
		t.Fatalf("got %q", got)
	}
}

func TestRejectsOversizeKeyFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "user.key"), make([]byte, 64), 0600); err != nil {
		t.Fatal(err)
	}
	p := NewWithConfig(Config{KeyDir: dir})
	if _, err := p.Protect([]byte("x"), CurrentUser, nil); err == nil {
		t.Fatal("Protect accepted a malformed key file")
	}
}
