// Package fakes provides test doubles for paramstore-keyring client interfaces.
//
// Fakes are manually implemented (not generated) to provide precise control
// over test behavior.
//
// Usage:
//
//	fake := fakes.NewFakeSSMClient()
//	fake.AddSecureStringParameter("/myapp/alice", "s3cr3t")
//	kr, _ := paramstore.New(paramstore.Config{Region: "us-east-1"},
//	    paramstore.WithSSMClient(fake))
package fakes
