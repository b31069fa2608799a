package storage

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"
)

// sealBytes encrypts a whole fixture for the store's recipient
func sealBytes(plain []byte, to age.Recipient) ([]byte, error) {
	var out bytes.Buffer
	w, err := age.Encrypt(&out, to)
	if err != nil {
		return nil, fmt.Errorf("age encrypt: %w", err)
	}
	if _, err := io.Copy(w, bytes.NewReader(plain)); err != nil {
		return nil, fmt.Errorf("age write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("age close: %w", err)
	}
	return out.Bytes(), nil
}

// openBytes reverses sealBytes; a wrong password surfaces here
func openBytes(sealed []byte, as age.Identity) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(sealed), as)
	if err != nil {
		return nil, fmt.Errorf("age decrypt: %w", err)
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("age read: %w", err)
	}
	return plain, nil
}
