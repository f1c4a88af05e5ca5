// Package secure keeps passwords read by the command line in protected memory.
//
// This package wraps the memguard library. A password read from a terminal
// or pipe is moved straight into an encrypted enclave and the source bytes
// are wiped; the plaintext is only exposed for the duration of a callback.
//
// # Usage
//
//	buf, err := secure.ReadSecret(os.Stdin)
//	if err != nil {
//	    return err
//	}
//	defer buf.Destroy()
//
//	err = buf.WithPlaintext(func(password string) error {
//	    return backend.Set(ctx, service, username, password)
//	})
//
// Call memguard.Purge() (or rely on memguard.CatchInterrupt) at program exit
// to wipe all protected memory.
//
// It does NOT protect against an attacker with access to the running process:
// the string handed to the callback lives in ordinary Go memory.
package secure
