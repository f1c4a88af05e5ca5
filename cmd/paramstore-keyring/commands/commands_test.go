package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/smithy-go"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/systmms/paramstore-keyring/internal/config"
	dserrors "github.com/systmms/paramstore-keyring/internal/errors"
	"github.com/systmms/paramstore-keyring/internal/logging"
	"github.com/systmms/paramstore-keyring/pkg/keyring"
	"github.com/systmms/paramstore-keyring/pkg/paramstore"
	"github.com/systmms/paramstore-keyring/tests/fakes"
	"github.com/systmms/paramstore-keyring/tests/testutil"
)

func TestMain(m *testing.M) {
	_ = os.Unsetenv(paramstore.KeyIDEnvVar)
	os.Exit(m.Run())
}

func newTestConfig(fake *fakes.FakeSSMClient) *config.Config {
	return &config.Config{
		Logger:            logging.Discard(),
		Settings:          &config.Settings{},
		Region:            "us-east-1",
		ParamStoreOptions: []paramstore.Option{paramstore.WithSSMClient(fake)},
	}
}

func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestSetCommand(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	logs := testutil.NewLogBuffer()
	cfg := newTestConfig(fake)
	cfg.Logger = logs.Logger(true)

	stdout, stderr, err := execute(t, NewSetCommand(cfg), "s3cr3t\n", "myapp", "alice")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Password for 'alice' in 'myapp'")
	testutil.AssertNoSecretLeak(t, stdout+stderr+logs.String(), []string{"s3cr3t"})
	assert.Contains(t, logs.String(), "Stored 'alice' in service 'myapp' in paramstore")

	param, ok := fake.Parameter("/myapp/alice")
	require.True(t, ok)
	assert.Equal(t, "s3cr3t", *param.Value)
	assert.Equal(t, paramstore.Description, *param.Description)
}

func TestSetCommandWithoutUsername(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	cfg := newTestConfig(fake)

	_, _, err := execute(t, NewSetCommand(cfg), "token", "myapp")
	require.NoError(t, err)

	param, ok := fake.Parameter("myapp")
	require.True(t, ok)
	assert.Equal(t, "token", *param.Value)
}

func TestSetCommandEmptyPassword(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	cfg := newTestConfig(fake)

	_, _, err := execute(t, NewSetCommand(cfg), "\n", "myapp", "alice")
	require.Error(t, err)

	var userErr dserrors.UserError
	require.True(t, errors.As(err, &userErr))
	assert.Equal(t, "No password given", userErr.Message)
	assert.Equal(t, 0, fake.CallCount("PutParameter"))
}

func TestSetCommandUsesKeyID(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	cfg := newTestConfig(fake)
	cfg.KeyID = "alias/keyring"

	_, _, err := execute(t, NewSetCommand(cfg), "s3cr3t", "myapp", "alice")
	require.NoError(t, err)

	input := fake.LastPutInput()
	require.NotNil(t, input)
	require.NotNil(t, input.KeyId)
	assert.Equal(t, "alias/keyring", *input.KeyId)
}

func TestSetCommandFailureLogRedactsPassword(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	fake.AddError("/myapp/alice", &smithy.GenericAPIError{
		Code:    "ValidationException",
		Message: "Value 'hunter2-s3cr3t' at 'value' failed to satisfy constraint",
	})
	logs := testutil.NewLogBuffer()
	cfg := newTestConfig(fake)
	cfg.Logger = logs.Logger(true)

	_, _, err := execute(t, NewSetCommand(cfg), "hunter2-s3cr3t\n", "myapp", "alice")
	require.Error(t, err)
	assert.Equal(t, "ValidationException", dserrors.APIErrorCode(err))

	var rejected []string
	for _, line := range logs.Lines() {
		if strings.Contains(line, "Details:") || strings.Contains(line, "rejected") {
			rejected = append(rejected, line)
		}
	}
	require.Len(t, rejected, 2)
	assert.Contains(t, rejected[0], "paramstore rejected 'alice' in service 'myapp'")
	testutil.AssertSecretRedacted(t, rejected[1], "hunter2-s3cr3t")
	testutil.AssertNoSecretLeak(t, logs.String(), []string{"hunter2-s3cr3t"})
}

func TestSetCommandArgs(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(fakes.NewFakeSSMClient())

	_, _, err := execute(t, NewSetCommand(cfg), "x")
	assert.Error(t, err)

	_, _, err = execute(t, NewSetCommand(cfg), "x", "a", "b", "c")
	assert.Error(t, err)
}

func TestGetCommand(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	fake.AddSecureStringParameter("/myapp/alice", "s3cr3t")
	cfg := newTestConfig(fake)

	stdout, _, err := execute(t, NewGetCommand(cfg), "", "myapp", "alice")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", stdout)
}

func TestGetCommandJSON(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	fake.AddSecureStringParameter("/myapp/alice", "s3cr3t")
	cfg := newTestConfig(fake)

	stdout, _, err := execute(t, NewGetCommand(cfg), "", "myapp", "alice", "--json")
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, "paramstore", result["backend"])
	assert.Equal(t, "myapp", result["service"])
	assert.Equal(t, "alice", result["username"])
	assert.Equal(t, "/myapp/alice", result["parameter"])
	assert.Equal(t, "s3cr3t", result["value"])
}

func TestGetCommandNotFound(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(fakes.NewFakeSSMClient())

	_, _, err := execute(t, NewGetCommand(cfg), "", "myapp", "alice")
	require.Error(t, err)
	assert.True(t, keyring.IsNotFound(err))

	var userErr dserrors.UserError
	require.True(t, errors.As(err, &userErr))
	assert.Contains(t, userErr.Message, "'alice' in service 'myapp'")
	assert.Equal(t, "Store one with 'paramstore-keyring set myapp alice'", userErr.Suggestion)
}

func TestGetCommandNotFoundWithoutUsername(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(fakes.NewFakeSSMClient())

	_, _, err := execute(t, NewGetCommand(cfg), "", "myapp")
	require.Error(t, err)

	var userErr dserrors.UserError
	require.True(t, errors.As(err, &userErr))
	assert.Equal(t, "Store one with 'paramstore-keyring set myapp'", userErr.Suggestion)
}

func TestGetCommandAccessDenied(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	fake.AddError("/myapp/alice", &smithy.GenericAPIError{
		Code:    "AccessDeniedException",
		Message: "not authorized to perform ssm:GetParameter",
	})
	cfg := newTestConfig(fake)

	_, _, err := execute(t, NewGetCommand(cfg), "", "myapp", "alice")
	require.Error(t, err)
	assert.False(t, keyring.IsNotFound(err))
	assert.Equal(t, "AccessDeniedException", dserrors.APIErrorCode(err))
}

func TestDelCommand(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	fake.AddSecureStringParameter("/myapp/alice", "s3cr3t")
	cfg := newTestConfig(fake)

	_, _, err := execute(t, NewDelCommand(cfg), "", "myapp", "alice")
	require.NoError(t, err)

	_, ok := fake.Parameter("/myapp/alice")
	assert.False(t, ok)

	_, _, err = execute(t, NewDelCommand(cfg), "", "myapp", "alice")
	require.Error(t, err)
	assert.True(t, keyring.IsNotFound(err))
}

func TestDelCommandAliases(t *testing.T) {
	t.Parallel()

	cmd := NewDelCommand(newTestConfig(fakes.NewFakeSSMClient()))
	assert.ElementsMatch(t, []string{"delete", "rm"}, cmd.Aliases)
}

func TestNameCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want string
	}{
		{args: []string{"myapp", "alice"}, want: "/myapp/alice\n"},
		{args: []string{"myapp"}, want: "myapp\n"},
		{args: []string{"/already/rooted"}, want: "/already/rooted\n"},
	}

	for _, tt := range tests {
		fake := fakes.NewFakeSSMClient()
		stdout, _, err := execute(t, NewNameCommand(newTestConfig(fake)), "", tt.args...)
		require.NoError(t, err)
		assert.Equal(t, tt.want, stdout)
		assert.Empty(t, fake.Calls, "name must not call AWS")
	}
}

func TestUnknownBackend(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(fakes.NewFakeSSMClient())
	cfg.Backend = "vault"

	_, _, err := execute(t, NewGetCommand(cfg), "", "myapp", "alice")
	require.Error(t, err)
	assert.True(t, dserrors.IsConfigError(err))
	assert.Contains(t, err.Error(), "vault")
}

func TestMissingRegion(t *testing.T) {
	cfg := newTestConfig(fakes.NewFakeSSMClient())
	cfg.Region = ""
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")

	_, _, err := execute(t, NewGetCommand(cfg), "", "myapp", "alice")
	require.Error(t, err)
	assert.True(t, dserrors.IsConfigError(err))
	assert.Contains(t, err.Error(), "region")
}

// Tests below use the go-keyring mock provider, which is process global.

func TestMigrateCommand(t *testing.T) {
	gokeyring.MockInit()
	require.NoError(t, gokeyring.Set("myapp", "alice", "from-keychain"))

	fake := fakes.NewFakeSSMClient()
	cfg := newTestConfig(fake)

	_, _, err := execute(t, NewMigrateCommand(cfg), "", "myapp", "alice")
	require.NoError(t, err)

	param, ok := fake.Parameter("/myapp/alice")
	require.True(t, ok)
	assert.Equal(t, "from-keychain", *param.Value)

	got, err := gokeyring.Get("myapp", "alice")
	require.NoError(t, err, "source kept without --delete-source")
	assert.Equal(t, "from-keychain", got)
}

func TestMigrateCommandDeleteSource(t *testing.T) {
	gokeyring.MockInit()
	require.NoError(t, gokeyring.Set("myapp", "alice", "from-keychain"))

	fake := fakes.NewFakeSSMClient()
	cfg := newTestConfig(fake)

	_, _, err := execute(t, NewMigrateCommand(cfg), "", "myapp", "alice", "--delete-source")
	require.NoError(t, err)

	_, ok := fake.Parameter("/myapp/alice")
	assert.True(t, ok)

	_, err = gokeyring.Get("myapp", "alice")
	assert.ErrorIs(t, err, gokeyring.ErrNotFound)
}

func TestMigrateCommandDryRun(t *testing.T) {
	gokeyring.MockInit()
	require.NoError(t, gokeyring.Set("myapp", "alice", "from-keychain"))

	fake := fakes.NewFakeSSMClient()
	cfg := newTestConfig(fake)

	_, _, err := execute(t, NewMigrateCommand(cfg), "", "myapp", "alice", "--dry-run", "--delete-source")
	require.NoError(t, err)

	assert.Equal(t, 0, fake.CallCount("PutParameter"))
	_, err = gokeyring.Get("myapp", "alice")
	assert.NoError(t, err)
}

func TestMigrateCommandToNative(t *testing.T) {
	gokeyring.MockInit()

	fake := fakes.NewFakeSSMClient()
	fake.AddSecureStringParameter("myapp", "token")
	cfg := newTestConfig(fake)

	_, _, err := execute(t, NewMigrateCommand(cfg), "", "myapp", "--from", "paramstore", "--to", "native")
	require.NoError(t, err)

	got, err := gokeyring.Get("myapp", "")
	require.NoError(t, err)
	assert.Equal(t, "token", got)
}

func TestMigrateCommandSameBackend(t *testing.T) {
	cfg := newTestConfig(fakes.NewFakeSSMClient())

	_, _, err := execute(t, NewMigrateCommand(cfg), "", "myapp", "alice", "--from", "native", "--to", "native")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both 'native'")
}

func TestMigrateKeepsSourceOnWriteFailure(t *testing.T) {
	gokeyring.MockInit()
	require.NoError(t, gokeyring.Set("myapp", "alice", "from-keychain"))

	fake := fakes.NewFakeSSMClient()
	fake.AddError("/myapp/alice", &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "denied"})

	source := keyring.NewNativeBackend("")
	dest, err := paramstore.New(paramstore.Config{Region: "us-east-1"},
		paramstore.WithSSMClient(fake), paramstore.WithLogger(logging.Discard()))
	require.NoError(t, err)

	err = migrate(context.Background(), source, dest, "myapp", "alice", true, false)
	require.Error(t, err)

	got, err := gokeyring.Get("myapp", "alice")
	require.NoError(t, err)
	assert.Equal(t, "from-keychain", got)
}

func TestMigrateMissingSource(t *testing.T) {
	gokeyring.MockInit()

	cfg := newTestConfig(fakes.NewFakeSSMClient())

	_, _, err := execute(t, NewMigrateCommand(cfg), "", "myapp", "nobody")
	require.Error(t, err)
	assert.True(t, keyring.IsNotFound(err))
}

func TestDoctorCommand(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("region: eu-west-1\nkey_id: alias/keyring\nprofile: ops\nassume_role: arn:aws:iam::123456789012:role/keyring\n"), 0o600))

	fake := fakes.NewFakeSSMClient()
	cfg := newTestConfig(fake)
	cfg.Path = path
	cfg.Region = ""

	stdout, _, err := execute(t, NewDoctorCommand(cfg), "")
	require.NoError(t, err)
	assert.Contains(t, stdout, "paramstore")
	assert.Contains(t, stdout, "eu-west-1")
	assert.Contains(t, stdout, "alias/keyring")
	assert.Contains(t, stdout, "ops")
	assert.Contains(t, stdout, "arn:aws:iam::123456789012:role/keyring")
	assert.Equal(t, 1, fake.CallCount("DescribeParameters"))
}

func TestDoctorCommandUnreachable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("region: eu-west-1\n"), 0o600))

	fake := fakes.NewFakeSSMClient()
	fake.DescribeParametersFunc = func(ctx context.Context, params *ssm.DescribeParametersInput) (*ssm.DescribeParametersOutput, error) {
		return nil, &smithy.GenericAPIError{Code: "ExpiredTokenException", Message: "token expired"}
	}
	cfg := newTestConfig(fake)
	cfg.Path = path

	_, _, err := execute(t, NewDoctorCommand(cfg), "")
	require.Error(t, err)

	var userErr dserrors.UserError
	require.True(t, errors.As(err, &userErr))
	assert.Contains(t, userErr.Suggestion, "aws sso login")
}

func TestDoctorCommandInvalidConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("regoin: eu-west-1\n"), 0o600))

	cfg := newTestConfig(fakes.NewFakeSSMClient())
	cfg.Path = path

	_, _, err := execute(t, NewDoctorCommand(cfg), "")
	require.Error(t, err)
	assert.True(t, dserrors.IsConfigError(err))
}
