package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	appctx "github.com/infini-money/infini-go/context"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

func TestRootCmdHasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range RootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"orders", "currencies", "withdraw", "webhook", "version"} {
		assert.True(t, names[want], "root command must expose %q", want)
	}
}

func TestClientContextCarriesConfiguration(t *testing.T) {
	viper.Set("environment", "sandbox")
	viper.Set("infini-server", "http://localhost:9090")
	viper.Set("infini-api-key", "key-id")
	viper.Set("infini-secret", "shh")
	viper.Set("currency-cache-expiry", time.Minute)
	viper.Set("currency-cache-purge", 4*time.Minute)

	ctx := clientContext(newTestCommand(t))

	env, err := appctx.GetStringFromContext(ctx, appctx.EnvironmentCTXKey)
	require.NoError(t, err)
	assert.Equal(t, "sandbox", env)

	apiKey, err := appctx.GetStringFromContext(ctx, appctx.InfiniAPIKeyCTXKey)
	require.NoError(t, err)
	assert.Equal(t, "key-id", apiKey)

	secret, err := appctx.GetStringFromContext(ctx, appctx.InfiniSecretCTXKey)
	require.NoError(t, err)
	assert.Equal(t, "shh", secret)

	expiry, ok := ctx.Value(appctx.CurrencyCacheExpiryDurationCTXKey).(time.Duration)
	require.True(t, ok)
	assert.Equal(t, time.Minute, expiry)
}

func TestWebhookVerifyRunKnownVector(t *testing.T) {
	bodyPath := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(bodyPath, []byte(`{"a":1}`), 0600))

	viper.Set("body", bodyPath)
	viper.Set("webhook-secret", "s3cr3t")
	viper.Set("timestamp", "1700000000")

	viper.Set("signature", "VN0xtaxyRS+iai1Rh9SILE3fsWqefqH5demY/1JT4os=")
	assert.NoError(t, webhookVerifyRun(newTestCommand(t), nil))

	viper.Set("signature", "bm90IHRoZSBzaWduYXR1cmU=")
	assert.Error(t, webhookVerifyRun(newTestCommand(t), nil))
}

func TestWebhookGenerateSecretRun(t *testing.T) {
	assert.NoError(t, webhookGenerateSecretRun(newTestCommand(t), nil))
}

func TestOrderCreateRunRejectsBadAmount(t *testing.T) {
	viper.Set("amount", "-5")
	assert.Error(t, orderCreateRun(newTestCommand(t), nil))

	viper.Set("amount", "1e9")
	assert.Error(t, orderCreateRun(newTestCommand(t), nil))
}

func TestWithdrawRunRejectsBadAmount(t *testing.T) {
	viper.Set("withdraw-amount", "not-a-number")
	assert.Error(t, withdrawRun(newTestCommand(t), nil))
}
