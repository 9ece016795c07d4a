package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	safeconfig "github.com/dmsheets/safe-config"
	"github.com/dmsheets/safe-config/blob"
	"github.com/dmsheets/safe-config/protect"
)

// StoreOptions locate and unlock one settings store.
type StoreOptions struct {
	Folder  string
	DB      string
	Name    string
	Machine bool
	Entropy string
	KeyDir  string
}

func addStoreFlags(fs *flag.FlagSet, opts *StoreOptions) {
	fs.StringVar(&opts.Folder, "folder", ".", "Folder holding the settings file")
	fs.StringVar(&opts.DB, "db", "", "Use a shared bbolt database at this path instead of a folder")
	fs.StringVar(&opts.Name, "name", "settings", "Entry name inside the bbolt database")
	fs.BoolVar(&opts.Machine, "machine", false, "Protect for any account on this machine instead of the current user")
	fs.StringVar(&opts.Entropy, "entropy", "", "Additional secret required to open the settings")
	fs.StringVar(&opts.KeyDir, "keydir", "", "Override the key file directory (no effect on Windows)")
}

// openManager builds a loaded manager from opts. The returned close func
// releases any database the store holds open.
func openManager(opts *StoreOptions) (*safeconfig.Manager, func() error, error) {
	m := safeconfig.New()
	if opts.KeyDir != "" {
		m.SetProtector(protect.NewWithConfig(protect.Config{KeyDir: opts.KeyDir}))
	}
	if opts.Machine {
		m.SetScope(protect.LocalMachine)
	}
	if opts.Entropy != "" {
		m.SetEntropy([]byte(opts.Entropy))
	}

	closer := func() error { return nil }
	if opts.DB != "" {
		bs, err := blob.NewBoltStore(opts.DB, opts.Name)
		if err != nil {
			return nil, nil, err
		}
		m.SetStore(bs)
		closer = bs.Close
	} else {
		m.SetFolder(opts.Folder)
		if err := m.Err(); err != nil {
			return nil, nil, err
		}
	}

	if err := m.Load(); err != nil {
		closer()
		return nil, nil, err
	}
	return m, closer, nil
}

type ListOptions struct {
	Store StoreOptions
}

// RunList prints every key and its display form, one per line, sorted.
func RunList(opts *ListOptions, w io.Writer) error {
	m, closer, err := openManager(&opts.Store)
	if err != nil {
		return err
	}
	defer closer()

	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		fmt.Fprintf(w, "%s=%s\n", k, v)
	}
	return nil
}

type GetOptions struct {
	Store StoreOptions
	Key   string
}

// RunGet prints one value. Strings print raw so output feeds scripts;
// other kinds use their display form.
func RunGet(opts *GetOptions, w io.Writer) error {
	if opts.Key == "" {
		return fmt.Errorf("-key is required")
	}
	m, closer, err := openManager(&opts.Store)
	if err != nil {
		return err
	}
	defer closer()

	v, ok := m.Get(opts.Key)
	if !ok {
		return fmt.Errorf("key %q is not set", opts.Key)
	}
	if v.Kind() == safeconfig.KindString {
		s, _ := safeconfig.Get[string](m, opts.Key)
		fmt.Fprintln(w, s)
		return nil
	}
	fmt.Fprintln(w, v)
	return nil
}

type SetOptions struct {
	Store StoreOptions
	Key   string
	Type  string
	Value string
}

// RunSet stores one value and saves the whole set.
func RunSet(opts *SetOptions) error {
	if opts.Key == "" {
		return fmt.Errorf("-key is required")
	}
	v, err := parseValue(opts.Type, opts.Value)
	if err != nil {
		return err
	}
	m, closer, err := openManager(&opts.Store)
	if err != nil {
		return err
	}
	defer closer()

	return m.Set(opts.Key, v).Save()
}

type DeleteOptions struct {
	Store StoreOptions
	Key   string
}

// RunDelete removes one key and saves. Removing an absent key succeeds.
func RunDelete(opts *DeleteOptions) error {
	if opts.Key == "" {
		return fmt.Errorf("-key is required")
	}
	m, closer, err := openManager(&opts.Store)
	if err != nil {
		return err
	}
	defer closer()

	return m.Delete(opts.Key).Save()
}

func parseValue(typ, raw string) (safeconfig.Value, error) {
	switch typ {
	case "string":
		return safeconfig.String(raw), nil
	case "int":
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return safeconfig.Value{}, fmt.Errorf("invalid int %q: %w", raw, err)
		}
		return safeconfig.Int(i), nil
	case "float":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return safeconfig.Value{}, fmt.Errorf("invalid float %q: %w", raw, err)
		}
		return safeconfig.Float(f), nil
	case "bool":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return safeconfig.Value{}, fmt.Errorf("invalid bool %q: %w", raw, err)
		}
		return safeconfig.Bool(b), nil
	case "bytes":
		b, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return safeconfig.Value{}, fmt.Errorf("invalid base64 %q: %w", raw, err)
		}
		return safeconfig.Bytes(b), nil
	case "time":
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return safeconfig.Value{}, fmt.Errorf("invalid RFC 3339 time %q: %w", raw, err)
		}
		return safeconfig.Time(ts), nil
	}
	return safeconfig.Value{}, fmt.Errorf("unknown value type %q", typ)
}
