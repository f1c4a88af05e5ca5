package secure

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrEmptySecret is returned when no secret could be read.
var ErrEmptySecret = errors.New("secret is empty")

// SecureBuffer provides memory-safe storage for a secret.
// It wraps memguard.Enclave to encrypt the secret at rest in memory.
type SecureBuffer struct {
	enclave *memguard.Enclave
	mu      sync.RWMutex
	// destroyed allows idempotent Destroy() calls and prevents use after destroy
	destroyed bool
}

// NewSecureBuffer moves data into a protected buffer. data is wiped.
func NewSecureBuffer(data []byte) (*SecureBuffer, error) {
	if len(data) == 0 {
		return nil, ErrEmptySecret
	}
	return &SecureBuffer{enclave: memguard.NewEnclave(data)}, nil
}

// NewSecureBufferFromString creates a protected buffer from s.
// The string itself cannot be wiped.
func NewSecureBufferFromString(s string) (*SecureBuffer, error) {
	return NewSecureBuffer([]byte(s))
}

// ReadSecret reads the first line of r into a protected buffer.
// A trailing "\n" or "\r\n" is dropped.
func ReadSecret(r io.Reader) (*SecureBuffer, error) {
	line, err := bufio.NewReader(r).ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		memguard.WipeBytes(line)
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}

	trimmed := bytes.TrimRight(line, "\r\n")
	buf, err := NewSecureBuffer(trimmed)
	// trimmed shares line's backing array; wipe the newline tail too
	memguard.WipeBytes(line)
	return buf, err
}

// WithPlaintext decrypts the secret and passes it to fn. The decrypted
// buffer is destroyed when fn returns.
func (s *SecureBuffer) WithPlaintext(fn func(plaintext string) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return errors.New("secure buffer already destroyed")
	}

	locked, err := s.enclave.Open()
	if err != nil {
		return fmt.Errorf("failed to open secure buffer: %w", err)
	}
	defer locked.Destroy()

	return fn(string(locked.Bytes()))
}

// Destroy marks this SecureBuffer as destroyed and drops the enclave.
// Idempotent.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return
	}

	s.enclave = nil
	s.destroyed = true
}
