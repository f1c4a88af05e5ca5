package keyring

import (
	"context"
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"
)

// NativeBackend stores credentials in the operating system's secret vault
// (macOS Keychain, Linux Secret Service, Windows Credential Manager).
type NativeBackend struct {
	name string
}

// NewNativeBackend creates a backend on top of the OS vault.
func NewNativeBackend(name string) *NativeBackend {
	if name == "" {
		name = "native"
	}
	return &NativeBackend{name: name}
}

// Name returns the backend name
func (b *NativeBackend) Name() string {
	return b.name
}

// Set stores a password in the OS vault
func (b *NativeBackend) Set(ctx context.Context, service, username, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := gokeyring.Set(service, username, password); err != nil {
		return fmt.Errorf("native keyring set %s/%s: %w", service, username, err)
	}
	return nil
}

// Get retrieves a password from the OS vault
func (b *NativeBackend) Get(ctx context.Context, service, username string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	secret, err := gokeyring.Get(service, username)
	if err != nil {
		return "", b.wrap("get", service, username, err)
	}
	return secret, nil
}

// Delete removes a password from the OS vault
func (b *NativeBackend) Delete(ctx context.Context, service, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := gokeyring.Delete(service, username); err != nil {
		return b.wrap("delete", service, username, err)
	}
	return nil
}

func (b *NativeBackend) wrap(op, service, username string, err error) error {
	if errors.Is(err, gokeyring.ErrNotFound) {
		return &NotFoundError{
			Backend:  b.name,
			Service:  service,
			Username: username,
			Err:      err,
		}
	}
	return fmt.Errorf("native keyring %s %s/%s: %w", op, service, username, err)
}

var _ Backend = (*NativeBackend)(nil)
