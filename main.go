package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	waLog "go.mau.fi/whatsmeow/util/log"

	"wa-launcher/pkg/banner"
	"wa-launcher/pkg/bot"
	"wa-launcher/pkg/console"
	"wa-launcher/pkg/handler"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Everything the client library prints goes through the filter; the
	// wrapped sinks are passed down explicitly instead of being installed
	// globally.
	filter := console.NewFilter()
	out := console.NewWriter(os.Stdout, filter)
	logger := console.WrapLogger(waLog.Stdout("WA", "INFO", true), filter)

	banner.New(out).Show("WA-LAUNCHER", "filtered WhatsApp bot launcher")

	cfg, err := bot.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, bot.ErrNoNumber) {
			fmt.Fprintln(os.Stderr, "\nUsage: wa-launcher [whatsapp-number]")
			fmt.Fprintln(os.Stderr, "Pass the number as an argument or set WA_NUMBER (a local .env file is read too).")
			fmt.Fprintln(os.Stderr, "Set WA_ALLOW_QR=1 to link by scanning a QR code instead.")
		}
		return 1
	}

	var h handler.Handler
	if cfg.OpenAIKey != "" {
		h = handler.NewAIResponder(handler.AIConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}, logger.Sub("AI"))
	} else {
		fmt.Fprintln(out, "OPENAI_API_KEY not set, incoming messages will only be logged")
		h = &handler.LogHandler{Log: logger.Sub("Handler")}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := bot.New(ctx, cfg, h, out, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := b.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, "Goodbye!")
	return 0
}
