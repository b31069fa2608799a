// Package storage gives transparent read/write access to the record fixtures
// under the data directory. The directory may be sealed with an age
// passphrase, in which case every fixture is stored encrypted on disk.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	"filippo.io/age"
)

const (
	// ageHeader is the prefix of age-encrypted files
	ageHeader = "age-encryption.org"

	// markerFile indicates the directory is sealed
	markerFile = ".sealed"

	// verifyFile is used to validate the passphrase
	verifyFile = ".seal-verify"

	// verifyMagic is the expected content in the verify file
	verifyMagic = `{"magic":"findash-seal-verify","version":1}`

	// FixtureExt is the extension of record fixture files
	FixtureExt = ".json"
)

var (
	ErrLocked        = errors.New("storage is sealed and locked")
	ErrWrongPassword = errors.New("incorrect password")
	ErrNotFound      = errors.New("fixture not found")
)

// Storage reads and writes fixtures, encrypting them when sealed
type Storage struct {
	baseDir   string
	sealed    bool
	identity  *age.ScryptIdentity
	recipient *age.ScryptRecipient
	mu        sync.RWMutex
}

// New opens the data directory. A missing directory is created.
func New(baseDir string) (*Storage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Storage{baseDir: baseDir}
	if _, err := os.Stat(filepath.Join(baseDir, markerFile)); err == nil {
		s.sealed = true
	}
	return s, nil
}

// BaseDir returns the data directory
func (s *Storage) BaseDir() string {
	return s.baseDir
}

// IsSealed reports whether fixtures are encrypted on disk
func (s *Storage) IsSealed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sealed
}

// IsUnlocked reports whether fixtures can be read
func (s *Storage) IsUnlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.sealed || s.identity != nil
}

// Unlock verifies the passphrase and keeps the key in memory
func (s *Storage) Unlock(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sealed {
		return nil
	}

	identity, err := s.verify(password)
	if err != nil {
		return err
	}
	recipient, err := age.NewScryptRecipient(password)
	if err != nil {
		return fmt.Errorf("failed to create recipient: %w", err)
	}

	s.identity = identity
	s.recipient = recipient
	return nil
}

// Lock forgets the key
func (s *Storage) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = nil
	s.recipient = nil
}

// Path resolves a fixture name to its file path. Names may omit the extension
// but may not escape the data directory, start with a dot, or contain "..",
// separators or whitespace.
func (s *Storage) Path(name string) (string, error) {
	if !validName(name) {
		return "", fmt.Errorf("invalid fixture name %q", name)
	}
	if filepath.Ext(name) != FixtureExt {
		name += FixtureExt
	}
	return filepath.Join(s.baseDir, name), nil
}

// ReadFixture reads a named fixture, decrypting it if needed
func (s *Storage) ReadFixture(name string) ([]byte, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := s.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, err
}

// WriteFixture stores a named fixture, encrypting it when sealed
func (s *Storage) WriteFixture(name string, data []byte) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	return s.WriteFile(path, data, 0644)
}

// Fixtures lists fixture names (without extension) in sorted order
func (s *Storage) Fixtures() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.baseDir, "*"+FixtureExt))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), FixtureExt))
	}
	sort.Strings(names)
	return names, nil
}

// ReadFile reads a file, decrypting it if it carries the age header
func (s *Storage) ReadFile(path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if isAgeEncrypted(data) {
		if s.identity == nil {
			return nil, ErrLocked
		}
		return openBytes(data, s.identity)
	}
	return data, nil
}

// WriteFile writes a file atomically, encrypting it when sealed
func (s *Storage) WriteFile(path string, data []byte, perm os.FileMode) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.sealed && !skipEncryption(path) {
		if s.recipient == nil {
			return ErrLocked
		}
		encrypted, err := sealBytes(data, s.recipient)
		if err != nil {
			return fmt.Errorf("failed to encrypt: %w", err)
		}
		data = encrypted
	}

	return atomicWrite(path, data, perm)
}

// Remove deletes a named fixture
func (s *Storage) Remove(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

func (s *Storage) verify(password string) (*age.ScryptIdentity, error) {
	identity, err := age.NewScryptIdentity(password)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	encrypted, err := os.ReadFile(filepath.Join(s.baseDir, verifyFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read verification file: %w", err)
	}

	decrypted, err := openBytes(encrypted, identity)
	if err != nil || string(decrypted) != verifyMagic {
		return nil, ErrWrongPassword
	}
	return identity, nil
}

func validName(name string) bool {
	return name != "" &&
		!strings.HasPrefix(name, ".") &&
		!strings.Contains(name, "..") &&
		!strings.ContainsAny(name, `/\`) &&
		strings.IndexFunc(name, unicode.IsSpace) < 0
}

func atomicWrite(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// skipEncryption is true for the seal bookkeeping files
func skipEncryption(path string) bool {
	base := filepath.Base(path)
	return base == markerFile || base == verifyFile
}

func isAgeEncrypted(data []byte) bool {
	return len(data) > len(ageHeader) && string(data[:len(ageHeader)]) == ageHeader
}
