// Package goldenstore persists byte-exact compiled JIT output keyed by
// the program and configuration that produced it, so a compiler change
// can be checked for behavioral drift across process invocations rather
// than only within one test binary's lifetime.
package goldenstore

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/cockroachdb/pebble"
	"golang.org/x/crypto/blake2b"

	"github.com/cryptonote-social/RandomX/pkg/rxtypes"
)

// Vector is one stored compilation result: the program and configuration
// that produced it, the compiled main-region bytes, and the instruction
// offset table a caller would otherwise have to recompile to obtain.
type Vector struct {
	Program            rxtypes.Program
	Config             rxtypes.ProgramConfiguration
	Light              bool
	Code               []byte
	InstructionOffsets [rxtypes.ProgramSize]int
}

// Key returns the content-addressed key for a (Program, Config, Light)
// triple: a Blake2b-256 digest of their gob encoding. Two Vectors with
// the same Key must have been compiled from identical inputs.
func Key(p *rxtypes.Program, cfg *rxtypes.ProgramConfiguration, light bool) ([32]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(p); err != nil {
		return [32]byte{}, fmt.Errorf("goldenstore: encoding program: %w", err)
	}
	if err := enc.Encode(cfg); err != nil {
		return [32]byte{}, fmt.Errorf("goldenstore: encoding config: %w", err)
	}
	if err := enc.Encode(light); err != nil {
		return [32]byte{}, fmt.Errorf("goldenstore: encoding light flag: %w", err)
	}
	return blake2b.Sum256(buf.Bytes()), nil
}

// Store wraps a PebbleDB instance holding golden vectors, one per
// content-addressed key.
type Store struct {
	db *pebble.DB
}

// Open opens (creating if necessary) a golden-vector store at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("goldenstore: opening %s: %w", dbPath, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes v under its own content-addressed key, overwriting any
// prior vector with the same key.
func (s *Store) Save(v *Vector) error {
	key, err := Key(&v.Program, &v.Config, v.Light)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("goldenstore: encoding vector: %w", err)
	}
	if err := s.db.Set(key[:], buf.Bytes(), pebble.Sync); err != nil {
		return fmt.Errorf("goldenstore: writing key %x: %w", key, err)
	}
	return nil
}

// Load retrieves the vector stored for (p, cfg, light). It returns
// (nil, nil) if no vector is stored under that key yet.
func (s *Store) Load(p *rxtypes.Program, cfg *rxtypes.ProgramConfiguration, light bool) (*Vector, error) {
	key, err := Key(p, cfg, light)
	if err != nil {
		return nil, err
	}
	data, closer, err := s.db.Get(key[:])
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("goldenstore: reading key %x: %w", key, err)
	}
	defer closer.Close()

	var v Vector
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		return nil, fmt.Errorf("goldenstore: decoding vector for key %x: %w", key, err)
	}
	return &v, nil
}

// Verify loads the vector for (p, cfg, light) and reports whether it is
// present and byte-identical to code/offsets. A missing vector is
// reported as a mismatch with ok=false and a nil error, distinguishing
// "never saved" from an actual I/O failure.
func (s *Store) Verify(p *rxtypes.Program, cfg *rxtypes.ProgramConfiguration, light bool, code []byte, offsets [rxtypes.ProgramSize]int) (ok bool, err error) {
	stored, err := s.Load(p, cfg, light)
	if err != nil {
		return false, err
	}
	if stored == nil {
		return false, nil
	}
	if !bytes.Equal(stored.Code, code) {
		return false, nil
	}
	if stored.InstructionOffsets != offsets {
		return false, nil
	}
	return true, nil
}
