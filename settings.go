package safeconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dmsheets/safe-config/blob"
	"github.com/dmsheets/safe-config/protect"
)

// SettingsFile is the file name used inside the configured folder.
const SettingsFile = "settings.cfg"

// Manager holds typed settings in memory and moves the whole set to and
// from protected storage. Configure it with the chained Set* calls, Load
// once, read and write values, then Save.
//
// A Manager is not safe for concurrent use.
type Manager struct {
	values    map[string]Value
	scope     protect.Scope
	entropy   []byte
	prot      protect.Protector
	store     blob.Store
	folder    string
	folderErr error
}

// New returns a manager with no settings, storing in the current working
// directory under CurrentUser scope with no entropy.
func New() *Manager {
	return &Manager{
		values: make(map[string]Value),
		prot:   protect.New(),
		folder: ".",
		store:  blob.NewFileStore(filepath.Join(".", SettingsFile)),
	}
}

// SetFolder stores settings in folder, creating it and any parents if
// missing. A creation failure does not stop the chain; it is reported by
// Err, Load, and Save until a later SetFolder succeeds.
func (m *Manager) SetFolder(folder string) *Manager {
	m.folder = folder
	m.store = blob.NewFileStore(filepath.Join(folder, SettingsFile))
	m.folderErr = nil
	if err := os.MkdirAll(folder, 0700); err != nil {
		m.folderErr = fmt.Errorf("%w: %w", ErrFolder, err)
	}
	return m
}

// SetApplicationFolder stores settings next to the running executable.
func (m *Manager) SetApplicationFolder() *Manager {
	exe, err := os.Executable()
	if err != nil {
		m.folderErr = fmt.Errorf("%w: resolve executable: %w", ErrFolder, err)
		return m
	}
	return m.SetFolder(filepath.Dir(exe))
}

// SetScope selects the protection scope for Load and Save. The default is
// protect.CurrentUser.
func (m *Manager) SetScope(scope protect.Scope) *Manager {
	m.scope = scope
	return m
}

// SetEntropy sets an additional secret folded into protection. The slice
// is copied; nil or empty removes it. Settings saved under one entropy
// cannot be loaded under another.
func (m *Manager) SetEntropy(entropy []byte) *Manager {
	if len(entropy) == 0 {
		m.entropy = nil
		return m
	}
	m.entropy = append([]byte(nil), entropy...)
	return m
}

// SetProtector replaces the protection capability. Nil restores the
// platform default.
func (m *Manager) SetProtector(p protect.Protector) *Manager {
	if p == nil {
		p = protect.New()
	}
	m.prot = p
	return m
}

// SetStore replaces the byte store used by Load and Save, detaching the
// manager from the folder-derived file. Nil is ignored. A later SetFolder
// points the manager back at a file.
func (m *Manager) SetStore(s blob.Store) *Manager {
	if s == nil {
		return m
	}
	m.store = s
	m.folderErr = nil
	return m
}

// Folder returns the configured settings folder.
func (m *Manager) Folder() string { return m.folder }

// Scope returns the configured protection scope.
func (m *Manager) Scope() protect.Scope { return m.scope }

// Err returns the pending configuration error, if any.
func (m *Manager) Err() error { return m.folderErr }

// Set stores v under key, replacing any previous value.
func (m *Manager) Set(key string, v Value) *Manager {
	m.values[key] = v
	return m
}

// Get returns the value under key and whether the key is present.
func (m *Manager) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Delete removes key. Removing a missing key is a no-op.
func (m *Manager) Delete(key string) *Manager {
	delete(m.values, key)
	return m
}

// Keys returns all present keys in sorted order.
func (m *Manager) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored settings.
func (m *Manager) Len() int { return len(m.values) }

// Clear removes every setting.
func (m *Manager) Clear() *Manager {
	m.values = make(map[string]Value)
	return m
}

// Replace swaps in values wholesale. The map is copied; nil clears.
func (m *Manager) Replace(values map[string]Value) *Manager {
	next := make(map[string]Value, len(values))
	for k, v := range values {
		next[k] = v
	}
	m.values = next
	return m
}

// Snapshot returns a copy of the current settings.
func (m *Manager) Snapshot() map[string]Value {
	out := make(map[string]Value, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Load reads, unprotects, and decodes the stored settings, replacing the
// in-memory set. A missing settings file is the first-run case: Load
// succeeds and the in-memory set is untouched. On any failure the
// in-memory set is also untouched.
func (m *Manager) Load() error {
	if m.folderErr != nil {
		return m.folderErr
	}
	ok, err := m.store.Exists()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if !ok {
		return nil
	}
	data, err := m.store.ReadAll()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	plain, err := m.prot.Unprotect(data, m.scope, m.entropy)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	values, err := decodeSettings(plain)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	m.values = values
	return nil
}

// Save encodes, protects, and writes the whole settings set, atomically
// replacing any previous stored payload.
func (m *Manager) Save() error {
	if m.folderErr != nil {
		return m.folderErr
	}
	data, err := encodeSettings(m.values)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	sealed, err := m.prot.Protect(data, m.scope, m.entropy)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	if err := m.store.WriteAll(sealed); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	return nil
}

// Storable enumerates the Go types settings read back as. Int settings
// read as either int or int64.
type Storable interface {
	string | int | int64 | float64 | bool | []byte | time.Time | []Value | map[string]Value
}

// Get reads the value under key as T. A missing key returns the zero T
// with no error. A present key of a different kind reports
// ErrTypeMismatch.
func Get[T Storable](m *Manager, key string) (T, error) {
	var zero T
	v, ok := m.values[key]
	if !ok {
		return zero, nil
	}
	out, err := valueAs[T](v)
	if err != nil {
		return zero, fmt.Errorf("key %q: %w", key, err)
	}
	return out, nil
}

func valueAs[T Storable](v Value) (T, error) {
	var out T
	switch p := any(&out).(type) {
	case *string:
		if v.kind != KindString {
			return out, mismatch(v.kind, KindString)
		}
		*p = v.str
	case *int:
		if v.kind != KindInt {
			return out, mismatch(v.kind, KindInt)
		}
		*p = int(v.num)
	case *int64:
		if v.kind != KindInt {
			return out, mismatch(v.kind, KindInt)
		}
		*p = v.num
	case *float64:
		if v.kind != KindFloat {
			return out, mismatch(v.kind, KindFloat)
		}
		*p = v.fl
	case *bool:
		if v.kind != KindBool {
			return out, mismatch(v.kind, KindBool)
		}
		*p = v.bl
	case *[]byte:
		if v.kind != KindBytes {
			return out, mismatch(v.kind, KindBytes)
		}
		*p = append([]byte(nil), v.bs...)
	case *time.Time:
		if v.kind != KindTime {
			return out, mismatch(v.kind, KindTime)
		}
		*p = v.tm
	case *[]Value:
		if v.kind != KindList {
			return out, mismatch(v.kind, KindList)
		}
		li := make([]Value, len(v.li))
		copy(li, v.li)
		*p = li
	case *map[string]Value:
		if v.kind != KindMap {
			return out, mismatch(v.kind, KindMap)
		}
		mp := make(map[string]Value, len(v.mp))
		for k, e := range v.mp {
			mp[k] = e
		}
		*p = mp
	}
	return out, nil
}

func mismatch(have, want Kind) error {
	return fmt.Errorf("%w: holds %s, want %s", ErrTypeMismatch, have, want)
}
