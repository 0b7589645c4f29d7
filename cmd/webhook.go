package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi"
	chiware "github.com/go-chi/chi/middleware"
	appctx "github.com/infini-money/infini-go/context"
	"github.com/infini-money/infini-go/handlers"
	"github.com/infini-money/infini-go/logging"
	"github.com/infini-money/infini-go/middleware"
	"github.com/infini-money/infini-go/requestutils"
	"github.com/infini-money/infini-go/webhook"
	"github.com/rs/zerolog/hlog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	webhookCmd.AddCommand(webhookVerifyCmd)
	webhookCmd.AddCommand(webhookServeCmd)
	webhookCmd.AddCommand(webhookGenerateSecretCmd)

	RootCmd.AddCommand(webhookCmd)

	// webhookSecret (required by verify and serve)
	webhookCmd.PersistentFlags().String("webhook-secret", "",
		"the shared secret used to verify webhook notifications")
	Must(viper.BindPFlag("webhook-secret", webhookCmd.PersistentFlags().Lookup("webhook-secret")))
	Must(viper.BindEnv("webhook-secret", "INFINI_WEBHOOK_SECRET"))

	// verify flags
	webhookVerifyCmd.Flags().String("body", "-",
		"path to the raw webhook body, - for stdin")
	Must(viper.BindPFlag("body", webhookVerifyCmd.Flags().Lookup("body")))

	webhookVerifyCmd.Flags().String("signature", "",
		"the base64 signature from the notification headers")
	Must(webhookVerifyCmd.MarkFlagRequired("signature"))
	Must(viper.BindPFlag("signature", webhookVerifyCmd.Flags().Lookup("signature")))

	webhookVerifyCmd.Flags().String("timestamp", "",
		"the timestamp from the notification headers")
	Must(webhookVerifyCmd.MarkFlagRequired("timestamp"))
	Must(viper.BindPFlag("timestamp", webhookVerifyCmd.Flags().Lookup("timestamp")))

	// serve flags
	webhookServeCmd.Flags().String("address", ":3333",
		"the address to listen on")
	Must(viper.BindPFlag("address", webhookServeCmd.Flags().Lookup("address")))

	webhookServeCmd.Flags().Int("rate-per-min", 60,
		"the rate limit per minute for inbound notifications")
	Must(viper.BindPFlag("rate-per-min", webhookServeCmd.Flags().Lookup("rate-per-min")))
}

var (
	webhookCmd = &cobra.Command{
		Use:   "webhook",
		Short: "verify and serve infini webhook notifications",
	}

	webhookVerifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "verify a webhook notification signature",
		Run:   Perform("verify webhook", webhookVerifyRun),
	}

	webhookServeCmd = &cobra.Command{
		Use:   "serve",
		Short: "run a webhook receiver that verifies notification signatures",
		Run:   webhookServeRun,
	}

	webhookGenerateSecretCmd = &cobra.Command{
		Use:   "generate-secret",
		Short: "generate a fresh webhook shared secret",
		Run:   Perform("generate webhook secret", webhookGenerateSecretRun),
	}
)

func webhookVerifyRun(cmd *cobra.Command, args []string) error {
	var (
		body []byte
		err  error
	)
	if path := viper.GetString("body"); path == "-" {
		body, err = requestutils.Read(cmd.Context(), os.Stdin)
	} else {
		body, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read webhook body: %w", err)
	}

	verifier := webhook.NewVerifier(viper.GetString("webhook-secret"))
	valid, err := verifier.Verify(body, viper.GetString("signature"), viper.GetString("timestamp"))
	if err != nil {
		return err
	}
	if !valid {
		return fmt.Errorf("webhook signature mismatch")
	}

	fmt.Println("webhook signature verified")
	return nil
}

func webhookGenerateSecretRun(cmd *cobra.Command, args []string) error {
	secret, err := webhook.GenerateSecret()
	if err != nil {
		return err
	}
	fmt.Println(secret)
	return nil
}

// webhookNotification is the envelope the provider posts on order events
type webhookNotification struct {
	EventType string          `json:"event_type"`
	OrderID   string          `json:"order_id"`
	Data      json.RawMessage `json:"data"`
}

func webhookReceiveHandler() handlers.AppHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlers.AppError {
		ctx := r.Context()
		logger := logging.Logger(ctx, "webhook.receive")

		var notification webhookNotification
		if err := requestutils.ReadJSON(ctx, r.Body, &notification); err != nil {
			return handlers.WrapError(err, "failed to read notification body", http.StatusBadRequest)
		}

		logger.Info().
			Str("event_type", notification.EventType).
			Str("order_id", notification.OrderID).
			Msg("verified webhook notification received")

		return handlers.RenderContent(ctx, map[string]string{"status": "ok"}, w, http.StatusOK)
	}
}

func webhookServeRun(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	logger, err := appctx.GetLogger(ctx)
	if err != nil {
		// no logger, setup
		ctx, logger = logging.SetupLogger(ctx)
	}

	// layer the serve configuration onto the context
	ctx = context.WithValue(ctx, appctx.InfiniWebhookSecretCTXKey, viper.GetString("webhook-secret"))
	ctx = context.WithValue(ctx, appctx.RateLimitPerMinuteCTXKey, viper.GetInt("rate-per-min"))

	secret, err := appctx.GetStringFromContext(ctx, appctx.InfiniWebhookSecretCTXKey)
	if err != nil || secret == "" {
		logger.Fatal().Msg("webhook-secret is required to serve notifications")
	}
	verifier := webhook.NewVerifier(secret)

	version, _ := ctx.Value(appctx.VersionCTXKey).(string)
	commit, _ := ctx.Value(appctx.CommitCTXKey).(string)
	buildTime, _ := ctx.Value(appctx.BuildTimeCTXKey).(string)

	r := chi.NewRouter()
	r.Use(
		chiware.RequestID,
		chiware.RealIP,
		chiware.Heartbeat("/"),
		chiware.Timeout(10*time.Second),
		middleware.RateLimiter(ctx, viper.GetInt("rate-per-min")),
		middleware.RequestIDTransfer)
	if logger != nil {
		// Also handles panic recovery
		r.Use(
			hlog.NewHandler(*logger),
			hlog.UserAgentHandler("user_agent"),
			hlog.RequestIDHandler("req_id", "Request-Id"),
			middleware.RequestLogger(logger))

		logger.Info().
			Str("version", version).
			Str("commit", commit).
			Str("build_time", buildTime).
			Str("address", viper.GetString("address")).
			Str("environment", viper.GetString("environment")).
			Msg("webhook receiver starting")
	}
	r.Get("/metrics", middleware.Metrics())
	r.Get("/health-check", handlers.HealthCheckHandler(version, buildTime, commit))

	r.Route("/v1/webhook", func(r chi.Router) {
		r.Use(middleware.WebhookSignedOnly(verifier))
		r.Post("/", middleware.InstrumentHandlerFunc(
			"WebhookReceiveHandler", webhookReceiveHandler()))
	})

	srv := http.Server{
		Addr:         viper.GetString("address"),
		Handler:      chi.ServerBaseContext(ctx, r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	// make sure exceptions go to sentry
	defer sentry.Flush(time.Second * 2)

	if err := srv.ListenAndServe(); err != nil {
		sentry.CaptureException(err)
		logger.Fatal().Err(err).Msg("HTTP server start failed!")
	}
}
