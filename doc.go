// Package safeconfig persists typed key-value settings to local storage,
// protected at rest by an OS-scoped data protection facility.
//
// A Manager is configured with chained calls, loads the settings file into
// memory, serves typed reads and writes, and saves the whole set back:
//
//	m := safeconfig.New().
//		SetFolder("/etc/myapp").
//		SetEntropy([]byte("pepper"))
//	if err := m.Load(); err != nil {
//		// handle
//	}
//	m.Set("listen", safeconfig.String("127.0.0.1:8080"))
//	port, err := safeconfig.Get[int64](m, "port")
//	if err := m.Save(); err != nil {
//		// handle
//	}
//
// Values are a closed tagged union built through constructors (String,
// Int, Float, Bool, Bytes, Time, List, Map). Reading a missing key with
// the generic Get returns the zero value of the requested type; reading a
// present key as the wrong type reports ErrTypeMismatch.
//
// # Protection
//
// On Windows the settings payload is sealed with DPAPI under CurrentUser
// or LocalMachine scope, optionally folding in caller-held entropy. Other
// platforms use a per-scope key file as a documented substitute; package
// protect describes its trust model.
//
// # Storage
//
// By default settings live in a single file, settings.cfg, inside the
// configured folder, written atomically so a crash mid-save never
// corrupts the previous file. SetStore swaps in other backends, such as a
// shared bbolt database from package blob.
//
// # Limits
//
// A Manager is not safe for concurrent use; wrap it in your own lock if
// goroutines share it. Two managers pointed at the same storage do not
// coordinate: the last Save wins.
package safeconfig
