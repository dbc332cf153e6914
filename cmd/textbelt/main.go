// Command textbelt is a small CLI for the Textbelt API client. One
// subcommand per operation:
//
//	textbelt send -phone +12025550123 -message "hi"
//	textbelt otp -phone +12025550123 [-userid u1]
//	textbelt verify -otp 123456 -userid u1
//	textbelt status -id <textId>
//	textbelt quota
//
// Configuration comes from the environment (TEXTBELT_API_KEY and friends,
// optionally via a .env file).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	textbelt "github.com/textbelt-community/textbelt-go"
	"github.com/textbelt-community/textbelt-go/internal/config"
	"github.com/textbelt-community/textbelt-go/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fail("config load", err)
	}

	baseLogger, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fail("logger init", err)
	}
	log := baseLogger.With().Str("service", "textbelt-cli").Logger()

	opts := []textbelt.Option{
		textbelt.WithLogger(log.With().Str("component", "client").Logger()),
		textbelt.WithTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, textbelt.WithBaseURL(cfg.BaseURL))
	}

	client, err := textbelt.New(cfg.APIKey, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise client")
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if err := run(ctx, client, log, os.Args[1], os.Args[2:]); err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("command failed")
	}
}

func run(ctx context.Context, client *textbelt.Client, log zerolog.Logger, command string, args []string) error {
	switch command {
	case "send":
		return runSend(ctx, client, log, args)
	case "otp":
		return runOTP(ctx, client, log, args)
	case "verify":
		return runVerify(ctx, client, log, args)
	case "status":
		return runStatus(ctx, client, log, args)
	case "quota":
		return runQuota(ctx, client, log)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func runSend(ctx context.Context, client *textbelt.Client, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	phone := fs.String("phone", "", "recipient phone number")
	message := fs.String("message", "", "message content")
	sender := fs.String("sender", "", "optional sender name")
	replyURL := fs.String("reply-webhook-url", "", "optional webhook url for replies")
	webhookData := fs.String("webhook-data", "", "optional data echoed in the reply webhook")
	sandbox := fs.Bool("sandbox", false, "use the test key, no message is sent")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := client.SendSMS(ctx, textbelt.SMSRequest{
		Phone:           *phone,
		Message:         *message,
		Sender:          *sender,
		ReplyWebhookURL: *replyURL,
		WebhookData:     *webhookData,
		Sandbox:         *sandbox,
	})
	if err != nil {
		return err
	}

	log.Info().
		Bool("success", resp.Success).
		Str("text_id", resp.TextID).
		Int("quota_remaining", resp.QuotaRemaining).
		Str("error", resp.Error).
		Msg("send result")
	return nil
}

func runOTP(ctx context.Context, client *textbelt.Client, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("otp", flag.ExitOnError)
	phone := fs.String("phone", "", "recipient phone number")
	userID := fs.String("userid", "", "user id to scope the otp (random when omitted)")
	message := fs.String("message", "", "optional custom message, use $OTP for the code")
	lifetime := fs.Int("lifetime", 0, "optional validity window in seconds")
	length := fs.Int("length", 0, "optional number of digits")
	if err := fs.Parse(args); err != nil {
		return err
	}

	uid := *userID
	if uid == "" {
		uid = uuid.NewString()
		log.Info().Str("userid", uid).Msg("generated user id, pass it to verify")
	}

	resp, err := client.SendOTP(ctx, textbelt.OTPGenerateRequest{
		Phone:    *phone,
		UserID:   uid,
		Message:  *message,
		Lifetime: *lifetime,
		Length:   *length,
	})
	if err != nil {
		return err
	}

	log.Info().
		Bool("success", resp.Success).
		Str("text_id", resp.TextID).
		Int("quota_remaining", resp.QuotaRemaining).
		Msg("otp send result")
	return nil
}

func runVerify(ctx context.Context, client *textbelt.Client, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	otp := fs.String("otp", "", "code entered by the user")
	userID := fs.String("userid", "", "user id the otp was generated for")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := client.VerifyOTP(ctx, textbelt.OTPVerificationRequest{
		OTP:    *otp,
		UserID: *userID,
	})
	if err != nil {
		return err
	}

	log.Info().
		Bool("success", resp.Success).
		Bool("is_valid_otp", resp.IsValidOTP).
		Msg("otp verification result")
	return nil
}

func runStatus(ctx context.Context, client *textbelt.Client, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	textID := fs.String("id", "", "text id returned by send")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := client.CheckSMSDeliveryStatus(ctx, *textID)
	if err != nil {
		return err
	}

	log.Info().Str("text_id", *textID).Str("status", string(resp.Status)).Msg("delivery status")
	return nil
}

func runQuota(ctx context.Context, client *textbelt.Client, log zerolog.Logger) error {
	resp, err := client.CheckCreditBalance(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Bool("success", resp.Success).
		Int("quota_remaining", resp.QuotaRemaining).
		Msg("credit balance")
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: textbelt <send|otp|verify|status|quota> [flags]")
}

func fail(stage string, err error) {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	logger.Fatal().Err(err).Str("stage", stage).Msg("textbelt cli init failed")
}
