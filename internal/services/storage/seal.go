package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"filippo.io/age"
)

// MinPasswordLen is the shortest passphrase Seal accepts
const MinPasswordLen = 8

// Seal encrypts every fixture in place and marks the directory sealed.
// On failure, files already encrypted are restored.
func (s *Storage) Seal(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed {
		return fmt.Errorf("storage is already sealed")
	}
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	}

	recipient, err := age.NewScryptRecipient(password)
	if err != nil {
		return fmt.Errorf("failed to create recipient: %w", err)
	}
	identity, err := age.NewScryptIdentity(password)
	if err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}

	verifyPath := filepath.Join(s.baseDir, verifyFile)
	verify, err := sealBytes([]byte(verifyMagic), recipient)
	if err != nil {
		return fmt.Errorf("failed to encrypt verification file: %w", err)
	}
	if err := os.WriteFile(verifyPath, verify, 0644); err != nil {
		return fmt.Errorf("failed to write verification file: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(s.baseDir, "*"+FixtureExt))
	if err != nil {
		os.Remove(verifyPath)
		return fmt.Errorf("failed to scan fixtures: %w", err)
	}

	var done []string
	rollback := func() {
		s.restore(done, identity)
		os.Remove(verifyPath)
	}
	for _, path := range files {
		if err := rewriteFile(path, func(data []byte) ([]byte, error) {
			if isAgeEncrypted(data) {
				return data, nil
			}
			return sealBytes(data, recipient)
		}); err != nil {
			rollback()
			return fmt.Errorf("failed to encrypt %s: %w", filepath.Base(path), err)
		}
		done = append(done, path)
	}

	// Without the marker the directory reads as plaintext, so nothing may stay encrypted
	if err := os.WriteFile(filepath.Join(s.baseDir, markerFile), []byte("sealed"), 0644); err != nil {
		rollback()
		return fmt.Errorf("failed to create marker file: %w", err)
	}

	s.sealed = true
	s.identity = identity
	s.recipient = recipient
	return nil
}

// Unseal decrypts every fixture in place (requires the current passphrase)
func (s *Storage) Unseal(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sealed {
		return fmt.Errorf("storage is not sealed")
	}

	identity, err := s.verify(password)
	if err != nil {
		return err
	}

	files, err := filepath.Glob(filepath.Join(s.baseDir, "*"+FixtureExt))
	if err != nil {
		return fmt.Errorf("failed to scan fixtures: %w", err)
	}
	for _, path := range files {
		if err := rewriteFile(path, func(data []byte) ([]byte, error) {
			if !isAgeEncrypted(data) {
				return data, nil
			}
			return openBytes(data, identity)
		}); err != nil {
			return fmt.Errorf("failed to decrypt %s: %w", filepath.Base(path), err)
		}
	}

	os.Remove(filepath.Join(s.baseDir, markerFile))
	os.Remove(filepath.Join(s.baseDir, verifyFile))

	s.sealed = false
	s.identity = nil
	s.recipient = nil
	return nil
}

// restore decrypts files encrypted during a failed Seal (best effort)
func (s *Storage) restore(files []string, identity *age.ScryptIdentity) {
	for _, path := range files {
		_ = rewriteFile(path, func(data []byte) ([]byte, error) {
			if !isAgeEncrypted(data) {
				return data, nil
			}
			return openBytes(data, identity)
		})
	}
}

func rewriteFile(path string, fn func([]byte) ([]byte, error)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := fn(data)
	if err != nil {
		return err
	}
	return atomicWrite(path, out, 0644)
}
