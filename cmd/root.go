package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/infini-money/infini-go/clients"
	appctx "github.com/infini-money/infini-go/context"
	errorutils "github.com/infini-money/infini-go/errors"
	"github.com/infini-money/infini-go/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// RootCmd is the base command (what the binary is called)
	RootCmd = &cobra.Command{
		Use:   "infini",
		Short: "infini provides a signed client and webhook tooling for the Infini payment api",
	}
	ctx = context.Background()
)

// Execute - the main entrypoint for all subcommands in infini
func Execute(version, commit, buildTime string) {
	// setup context with logging, but first we need to setup the environment
	var logger *zerolog.Logger
	ctx = context.WithValue(ctx, appctx.EnvironmentCTXKey, viper.Get("environment"))
	ctx = context.WithValue(ctx, appctx.DebugLoggingCTXKey, viper.GetBool("debug"))
	ctx, logger = logging.SetupLogger(ctx)

	ctx = context.WithValue(ctx, appctx.VersionCTXKey, version)
	ctx = context.WithValue(ctx, appctx.CommitCTXKey, commit)
	ctx = context.WithValue(ctx, appctx.BuildTimeCTXKey, buildTime)

	// execute the root cmd
	if err := RootCmd.ExecuteContext(ctx); err != nil {
		logger.Error().Err(err).Msg("./infini command encountered an error")
		os.Exit(1)
	}
}

func init() {
	// env - defaults to sandbox
	RootCmd.PersistentFlags().String("environment", "sandbox",
		"the infini api environment (sandbox or production)")
	Must(viper.BindPFlag("environment", RootCmd.PersistentFlags().Lookup("environment")))
	Must(viper.BindEnv("environment", "INFINI_ENV"))

	// debug logging - defaults to off
	RootCmd.PersistentFlags().Bool("debug", false, "turn on debug logging")
	Must(viper.BindPFlag("debug", RootCmd.PersistentFlags().Lookup("debug")))
	Must(viper.BindEnv("debug", "DEBUG"))

	// infiniServer - overrides the environment base url when set
	RootCmd.PersistentFlags().String("infini-server", "",
		"the infini api server address, overrides the environment base url")
	Must(viper.BindPFlag("infini-server", RootCmd.PersistentFlags().Lookup("infini-server")))
	Must(viper.BindEnv("infini-server", "INFINI_SERVER"))

	// infiniAPIKey (required by all api calls)
	RootCmd.PersistentFlags().String("infini-api-key", "",
		"the infini api key identifier")
	Must(viper.BindPFlag("infini-api-key", RootCmd.PersistentFlags().Lookup("infini-api-key")))
	Must(viper.BindEnv("infini-api-key", "INFINI_API_KEY"))

	// infiniSecret (required by all api calls)
	RootCmd.PersistentFlags().String("infini-secret", "",
		"the infini shared signing secret")
	Must(viper.BindPFlag("infini-secret", RootCmd.PersistentFlags().Lookup("infini-secret")))
	Must(viper.BindEnv("infini-secret", "INFINI_SECRET_KEY"))

	// currencyCacheExpiry
	RootCmd.PersistentFlags().Duration("currency-cache-expiry", 1*time.Hour,
		"the supported currency cache default eviction duration")
	Must(viper.BindPFlag("currency-cache-expiry", RootCmd.PersistentFlags().Lookup("currency-cache-expiry")))
	Must(viper.BindEnv("currency-cache-expiry", "CURRENCY_CACHE_EXPIRY"))

	// currencyCachePurge
	RootCmd.PersistentFlags().Duration("currency-cache-purge", 4*time.Hour,
		"the supported currency cache default purge duration")
	Must(viper.BindPFlag("currency-cache-purge", RootCmd.PersistentFlags().Lookup("currency-cache-purge")))
	Must(viper.BindEnv("currency-cache-purge", "CURRENCY_CACHE_PURGE"))

	RootCmd.AddCommand(VersionCmd)
}

// VersionCmd is the command to get the code's version information
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "get the version of this binary",
	Run:   versionRun,
}

func versionRun(command *cobra.Command, args []string) {
	version := command.Context().Value(appctx.VersionCTXKey).(string)
	commit := command.Context().Value(appctx.CommitCTXKey).(string)
	buildTime := command.Context().Value(appctx.BuildTimeCTXKey).(string)
	fmt.Printf("version: %s\ncommit: %s\nbuild time: %s\n",
		version, commit, buildTime,
	)
}

// Must helper to make sure there is no errors
func Must(err error) {
	if err != nil {
		fmt.Printf("failed to initialize: %s\n", err.Error())
		// exit with failure
		os.Exit(1)
	}
}

// Perform performs a run
func Perform(action string, fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		err := fn(cmd, args)
		if err != nil {
			logger, lerr := appctx.GetLogger(cmd.Context())
			if lerr != nil {
				_, logger = logging.SetupLogger(cmd.Context())
			}

			log := logger.Err(err).Str("action", action)
			httpError, ok := err.(*errorutils.ErrorBundle)
			if ok {
				state, ok := httpError.Data().(clients.HTTPState)
				if ok {
					log = log.Int("status", state.Status).
						Str("path", state.Path).
						Interface("data", state.Body)
				}
			}
			log.Msg("failed")
		}
		<-time.After(10 * time.Millisecond)
		if err != nil {
			os.Exit(1)
		}
	}
}

// clientContext layers the api configuration from flags and environment onto
// the command's context for client construction
func clientContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	ctx = context.WithValue(ctx, appctx.EnvironmentCTXKey, viper.GetString("environment"))
	ctx = context.WithValue(ctx, appctx.InfiniServerCTXKey, viper.GetString("infini-server"))
	ctx = context.WithValue(ctx, appctx.InfiniAPIKeyCTXKey, viper.GetString("infini-api-key"))
	ctx = context.WithValue(ctx, appctx.InfiniSecretCTXKey, viper.GetString("infini-secret"))
	ctx = context.WithValue(ctx, appctx.CurrencyCacheExpiryDurationCTXKey, viper.GetDuration("currency-cache-expiry"))
	ctx = context.WithValue(ctx, appctx.CurrencyCachePurgeDurationCTXKey, viper.GetDuration("currency-cache-purge"))
	return ctx
}
