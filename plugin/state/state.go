// Package state serializes the Wasabi parameter set and current program
// to and from an opaque byte blob.
//
// Layout (little-endian):
//
//	"WASABI"            6-byte magic
//	version  uint32     currently 1
//	program  int32      selected factory program
//	count    int32      number of entries that follow
//	count x { id uint32; value float64 }
//
// Unknown ids are skipped so newer builds can add parameters.
package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cwbudde/algo-wasabi/plugin/params"
)

// Version is the format version written by Save.
const Version uint32 = 1

const (
	magic = "WASABI"

	// maxEntries bounds the entry count read from untrusted input.
	maxEntries = 4096
)

var (
	// ErrInvalidFormat is returned for data that is not a Wasabi state blob.
	ErrInvalidFormat = errors.New("state: invalid format")
	// ErrUnsupportedVersion is returned for blobs written by a newer format.
	ErrUnsupportedVersion = errors.New("state: unsupported version")
)

type entry struct {
	ID    uint32
	Value float64
}

// Save writes every parameter of store and program to w.
func Save(w io.Writer, store *params.Store, program int) error {
	if _, err := io.WriteString(w, magic); err != nil {
		return fmt.Errorf("state: write magic: %w", err)
	}

	header := struct {
		Version uint32
		Program int32
		Count   int32
	}{Version, int32(program), int32(params.Count)}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("state: write header: %w", err)
	}

	values := store.Snapshot()
	entries := make([]entry, params.Count)
	for i, v := range values {
		entries[i] = entry{ID: uint32(i), Value: v}
	}
	if err := binary.Write(w, binary.LittleEndian, entries); err != nil {
		return fmt.Errorf("state: write parameters: %w", err)
	}

	return nil
}

// Load reads a blob from r into store and returns the saved program.
// The store is only modified once the whole blob has been read.
func Load(r io.Reader, store *params.Store) (int, error) {
	head := make([]byte, len(magic))
	if _, err := io.ReadFull(r, head); err != nil {
		return 0, fmt.Errorf("%w: short header", ErrInvalidFormat)
	}
	if string(head) != magic {
		return 0, fmt.Errorf("%w: bad magic %q", ErrInvalidFormat, head)
	}

	var header struct {
		Version uint32
		Program int32
		Count   int32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return 0, fmt.Errorf("%w: short header", ErrInvalidFormat)
	}
	if header.Version == 0 {
		return 0, fmt.Errorf("%w: version 0", ErrInvalidFormat)
	}
	if header.Version > Version {
		return 0, fmt.Errorf("%w: %d (supported %d)", ErrUnsupportedVersion, header.Version, Version)
	}
	if header.Count < 0 || header.Count > maxEntries {
		return 0, fmt.Errorf("%w: parameter count %d", ErrInvalidFormat, header.Count)
	}

	entries := make([]entry, header.Count)
	if err := binary.Read(r, binary.LittleEndian, entries); err != nil {
		return 0, fmt.Errorf("%w: truncated parameters", ErrInvalidFormat)
	}

	values := store.Snapshot()
	for _, e := range entries {
		if e.ID >= uint32(params.Count) {
			continue
		}
		values[params.ID(e.ID)] = e.Value
	}
	store.Restore(values)

	return int(header.Program), nil
}

// Marshal returns the blob for store and program.
func Marshal(store *params.Store, program int) ([]byte, error) {
	var buf bytes.Buffer
	if err := Save(&buf, store, program); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal loads data into store and returns the saved program.
func Unmarshal(data []byte, store *params.Store) (int, error) {
	return Load(bytes.NewReader(data), store)
}
