//go:build windows

package protect

import (
	"bytes"
	"errors"
	"testing"
)

func TestRoundTripScopeMatrix(t *testing.T) {
	p := newTestProtector(t)

	cases := []struct {
		name    string
		scope   Scope
		entropy []byte
	}{
		{name: "user", scope: CurrentUser},
		{name: "user-entropy", scope: CurrentUser, entropy: []byte("pepper")},
		{name: "machine", scope: LocalMachine},
		{name: "machine-entropy", scope: LocalMachine, entropy: []byte("pepper")},
	}
	plain := []byte("sealed settings payload")
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sealed, err := p.Protect(plain, c.scope, c.entropy)
			if err != nil {
				t.Fatalf("Protect: %v", err)
			}
			got, err := p.Unprotect(sealed, c.scope, c.entropy)
			if err != nil {
				t.Fatalf("Unprotect: %v", err)
			}
			if !bytes.Equal(got, plain) {
				t.Fatalf("got %q, want %q", got, plain)
			}
		})
	}
}

func TestUnprotectScopeRecordedInBlob(t *testing.T) {
	p := newTestProtector(t)

	sealed, err := p.Protect([]byte("shared"), LocalMachine, nil)
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}
	// The blob carries its own scope, so the scope argument does not have
	// to match the one used to seal.
	got, err := p.Unprotect(sealed, CurrentUser, nil)
	if err != nil {
		t.Fatalf("Unprotect: %v", err)
	}
	if string(got) != "shared" {
		t.Fatalf("got %q, want %q", got, "shared")
	}
}

func TestUnprotectBadData(t *testing.T) {
	p := newTestProtector(t)
	if _, err := p.Unprotect([]byte("not a sealed blob"), CurrentUser, nil); !errors.Is(err, ErrUnprotect) {
		t.Fatalf("got %v, want ErrUnprotect", err)
	}
}
