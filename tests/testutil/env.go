package testutil

import (
	"os"
	"testing"
)

// LiveAWSEnvVar gates tests that talk to a real Parameter Store.
const LiveAWSEnvVar = "PARAMSTORE_KEYRING_TEST_AWS"

// SetupTestEnv sets environment variables for the duration of a test.
//
// The original environment is restored automatically when the test completes.
// Tests using it must not call t.Parallel().
//
// Example usage:
//
//	SetupTestEnv(t, map[string]string{
//	    "AWS_REGION":                "us-east-1",
//	    "PARAMSTORE_KEYRING_KEY_ID": "alias/keyring",
//	})
func SetupTestEnv(t *testing.T, vars map[string]string) {
	t.Helper()

	for key, value := range vars {
		saveEnv(t, key)
		if err := os.Setenv(key, value); err != nil {
			t.Fatalf("Failed to set environment variable %s: %v", key, err)
		}
	}
}

// UnsetTestEnv removes environment variables for the duration of a test.
func UnsetTestEnv(t *testing.T, keys ...string) {
	t.Helper()

	for _, key := range keys {
		saveEnv(t, key)
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("Failed to unset environment variable %s: %v", key, err)
		}
	}
}

// RequireLiveAWS skips the test unless PARAMSTORE_KEYRING_TEST_AWS is set and
// returns the region to test against (AWS_REGION, default us-east-1).
func RequireLiveAWS(t *testing.T) string {
	t.Helper()

	if _, exists := os.LookupEnv(LiveAWSEnvVar); !exists {
		t.Skipf("Skipping live Parameter Store test. Set %s=1 to run.", LiveAWSEnvVar)
	}

	if region := os.Getenv("AWS_REGION"); region != "" {
		return region
	}
	return "us-east-1"
}

func saveEnv(t *testing.T, key string) {
	orig, had := os.LookupEnv(key)
	t.Cleanup(func() {
		if had {
			if err := os.Setenv(key, orig); err != nil {
				t.Errorf("Failed to restore environment variable %s: %v", key, err)
			}
			return
		}
		if err := os.Unsetenv(key); err != nil {
			t.Errorf("Failed to unset environment variable %s: %v", key, err)
		}
	})
}
