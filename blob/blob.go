// Package blob stores one encrypted settings payload as an opaque byte
// sequence. Implementations cover a plain file and an entry in a shared
// bbolt database.
package blob

// Store holds a single payload. Reads and writes always cover the whole
// payload.
type Store interface {
	// Exists reports whether a payload has been written.
	Exists() (bool, error)

	// ReadAll returns the entire stored payload. Missing payloads report
	// an error satisfying errors.Is(err, fs.ErrNotExist).
	ReadAll() ([]byte, error)

	// WriteAll replaces the stored payload. The replacement is atomic: a
	// reader sees either the previous payload or the new one.
	WriteAll(data []byte) error
}
