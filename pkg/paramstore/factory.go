package paramstore

import "github.com/systmms/paramstore-keyring/pkg/keyring"

// Factory returns a keyring.Factory that builds Parameter Store backends
// from cfg.
func Factory(cfg Config, opts ...Option) keyring.Factory {
	return func(name string) (keyring.Backend, error) {
		all := append([]Option{WithName(name)}, opts...)
		k, err := New(cfg, all...)
		if err != nil {
			return nil, err
		}
		return k, nil
	}
}

// Register adds the Parameter Store backend to r under BackendType.
func Register(r *keyring.Registry, cfg Config, opts ...Option) {
	r.Register(BackendType, Factory(cfg, opts...))
}
