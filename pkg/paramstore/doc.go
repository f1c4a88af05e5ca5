// Package paramstore implements a keyring.Backend that keeps credentials in
// AWS Systems Manager Parameter Store.
//
// Each (service, username) pair maps to one SecureString parameter:
//
//	ParameterName("myapp", "alice") == "/myapp/alice"
//	ParameterName("myapp", "")      == "myapp"
//
// Values are written with Overwrite enabled and read back with decryption.
// When a KMS key id is configured it is passed on every write; otherwise
// Parameter Store uses the account's default aws/ssm key. The environment
// variable PARAMSTORE_KEYRING_KEY_ID, when set, takes precedence over the
// key id given in Config.
//
// # Usage
//
//	kr, err := paramstore.New(paramstore.Config{Region: "us-east-1"})
//	if err != nil {
//	    return err
//	}
//	if err := kr.Set(ctx, "myapp", "alice", "s3cr3t"); err != nil {
//	    return err
//	}
//	password, err := kr.Get(ctx, "myapp", "alice")
//	if keyring.IsNotFound(err) {
//	    // nothing stored
//	}
//
// The SSM client is built once in New and shared by all operations, so a
// Keyring is safe for concurrent use.
package paramstore
