package protect

import (
	"bytes"
	"errors"
	"testing"
)

func newTestProtector(t *testing.T) Protector {
	t.Helper()
	return NewWithConfig(Config{KeyDir: t.TempDir()})
}

func TestRoundTrip(t *testing.T) {
	p := newTestProtector(t)

	cases := []struct {
		name    string
		plain   []byte
		scope   Scope
		entropy []byte
	}{
		{name: "user", plain: []byte("hello"), scope: CurrentUser},
		{name: "user-entropy", plain: []byte("hello"), scope: CurrentUser, entropy: []byte("pepper")},
		{name: "empty", plain: []byte{}, scope: CurrentUser},
		{name: "binary", plain: []byte{0, 1, 2, 0xff, 0xfe}, scope: CurrentUser},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sealed, err := p.Protect(c.plain, c.scope, c.entropy)
			if err != nil {
				t.Fatalf("Protect: %v", err)
			}
			if bytes.Contains(sealed, c.plain) && len(c.plain) > 0 {
				t.Fatal("sealed output contains plaintext")
			}
			got, err := p.Unprotect(sealed, c.scope, c.entropy)
			if err != nil {
				t.Fatalf("Unprotect: %v", err)
			}
			if !bytes.Equal(got, c.plain) {
				t.Fatalf("got %q, want %q", got, c.plain)
			}
		})
	}
}

func TestProtectRandomized(t *testing.T) {
	p := newTestProtector(t)
	a, err := p.Protect([]byte("same input"), CurrentUser, nil)
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}
	b, err := p.Protect([]byte("same input"), CurrentUser, nil)
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatal("two Protect calls produced identical output")
	}
}

func TestUnprotectWrongEntropy(t *testing.T) {
	p := newTestProtector(t)
	sealed, err := p.Protect([]byte("secret"), CurrentUser, []byte("right"))
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}
	if _, err := p.Unprotect(sealed, CurrentUser, []byte("wrong")); err == nil {
		t.Fatal("Unprotect with wrong entropy succeeded")
	}
	if _, err := p.Unprotect(sealed, CurrentUser, nil); err == nil {
		t.Fatal("Unprotect with missing entropy succeeded")
	}
}

func TestInvalidScope(t *testing.T) {
	p := newTestProtector(t)
	if _, err := p.Protect([]byte("x"), Scope(99), nil); !errors.Is(err, ErrInvalidScope) {
		t.Fatalf("Protect: got %v, want ErrInvalidScope", err)
	}
	if _, err := p.Unprotect([]byte("x"), Scope(-1), nil); !errors.Is(err, ErrInvalidScope) {
		t.Fatalf("Unprotect: got %v, want ErrInvalidScope", err)
	}
}

func TestScopeString(t *testing.T) {
	cases := []struct {
		scope Scope
		want  string
	}{
		{CurrentUser, "current-user"},
		{LocalMachine, "local-machine"},
		{Scope(7), "invalid-scope"},
	}
	for _, c := range cases {
		if got := c.scope.String(); got != c.want {
			t.Errorf("Scope(%d).String() = %q, want %q", int(c.scope), got, c.want)
		}
	}
}
