// Package bot drives the WhatsApp client lifecycle: session storage,
// pairing, connection supervision and message dispatch. All diagnostic
// output from the client flows through the filtered sinks injected at
// construction.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mdp/qrterminal"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waCompanionReg"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	"wa-launcher/pkg/banner"
	"wa-launcher/pkg/handler"
)

const (
	maxRestarts    = 5
	restartBase    = 5 * time.Second
	restartCap     = 80 * time.Second
	pairAttempts   = 3
	pairRetryDelay = 10 * time.Second
)

// ErrLoggedOut means the phone unlinked this device. Reconnecting is
// pointless until the session store is cleared and the device re-paired.
var ErrLoggedOut = errors.New("device was logged out from the phone")

var errConnectionLost = errors.New("connection to WhatsApp lost")

type Bot struct {
	cfg     *Config
	handler handler.Handler
	out     io.Writer
	log     waLog.Logger
	display *banner.Renderer

	client *whatsmeow.Client

	sawConnect   atomic.Bool
	disconnected chan struct{}
	loggedOut    chan struct{}
}

// New opens the session store and builds the WhatsApp client. out and log
// should already be wrapped by the console filter; the bot does not install
// anything globally.
func New(ctx context.Context, cfg *Config, h handler.Handler, out io.Writer, log waLog.Logger) (*Bot, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create session directory: %w", err)
		}
	}

	container, err := sqlstore.New(ctx, "sqlite3", "file:"+cfg.DBPath+"?_foreign_keys=on", log.Sub("DB"))
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load device: %w", err)
	}

	store.DeviceProps.PlatformType = waCompanionReg.DeviceProps_DESKTOP.Enum()
	store.DeviceProps.Os = proto.String(cfg.DeviceName)

	client := whatsmeow.NewClient(device, log.Sub("Client"))
	// Reconnects are supervised by Run, not by the library.
	client.EnableAutoReconnect = false

	b := &Bot{
		cfg:          cfg,
		handler:      h,
		out:          out,
		log:          log,
		display:      banner.New(out),
		client:       client,
		disconnected: make(chan struct{}, 1),
		loggedOut:    make(chan struct{}, 1),
	}
	client.AddEventHandler(b.handleEvent)
	return b, nil
}

// Run connects and supervises the session until the context is canceled
// (graceful shutdown, returns nil), the phone logs the device out (returns
// ErrLoggedOut), or too many consecutive restarts fail. A session that
// reached the connected state resets the restart counter.
func (b *Bot) Run(ctx context.Context) error {
	attempt := 0
	for {
		healthy, err := b.runSession(ctx)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrLoggedOut):
			return err
		}

		if healthy {
			attempt = 0
		}
		attempt++
		if attempt > maxRestarts {
			return fmt.Errorf("giving up after %d restarts: %w", maxRestarts, err)
		}

		delay := restartDelay(attempt)
		fmt.Fprintf(b.out, "⚠️  %v, restarting in %s (attempt %d/%d)\n", err, delay, attempt, maxRestarts)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

func (b *Bot) runSession(ctx context.Context) (healthy bool, err error) {
	b.sawConnect.Store(false)
	if err := b.connect(ctx); err != nil {
		return false, err
	}

	select {
	case <-ctx.Done():
		fmt.Fprintln(b.out, "\nShutting down...")
		b.client.Disconnect()
		return true, nil
	case <-b.loggedOut:
		b.client.Disconnect()
		return false, ErrLoggedOut
	case <-b.disconnected:
		return b.sawConnect.Load(), errConnectionLost
	}
}

func (b *Bot) connect(ctx context.Context) error {
	if b.client.Store.ID == nil {
		if b.cfg.Number == "" {
			return b.connectWithQR(ctx)
		}
		return b.pair(ctx)
	}
	if err := b.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	return nil
}

// pair connects without a session and requests a pairing code for the
// configured number. Failures are retried a fixed number of times with a
// categorized hint, then reported as fatal.
func (b *Bot) pair(ctx context.Context) error {
	if err := b.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect for pairing: %w", err)
	}
	if !b.client.WaitForConnection(10 * time.Second) {
		return fmt.Errorf("websocket not ready for pairing")
	}

	var lastErr error
	for attempt := 1; attempt <= pairAttempts; attempt++ {
		code, err := b.client.PairPhone(ctx, b.cfg.Number, true, whatsmeow.PairClientChrome, "Chrome (Linux)")
		if err == nil {
			b.display.PairingInstructions(b.cfg.Number, code)
			return nil
		}
		lastErr = err
		fmt.Fprintf(b.out, "❌ Pairing code request failed: %v\n   Hint: %s\n", err, pairingHint(err))
		if attempt < pairAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pairRetryDelay):
			}
		}
	}
	return fmt.Errorf("no pairing code after %d attempts: %w", pairAttempts, lastErr)
}

func (b *Bot) connectWithQR(ctx context.Context) error {
	qrChan, err := b.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}
	if err := b.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect for QR login: %w", err)
	}

	for evt := range qrChan {
		switch evt.Event {
		case "code":
			fmt.Fprintln(b.out, "Scan this QR code with WhatsApp:")
			qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, b.out)
		case "success":
			return nil
		case "timeout":
			return fmt.Errorf("QR code expired before it was scanned")
		}
	}
	return nil
}

func (b *Bot) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Connected:
		b.sawConnect.Store(true)
		fmt.Fprintln(b.out, "✅ Connected to WhatsApp")
	case *events.PairSuccess:
		fmt.Fprintf(b.out, "✅ Paired with device %s\n", v.ID)
	case *events.Disconnected:
		b.signal(b.disconnected)
	case *events.LoggedOut:
		fmt.Fprintf(b.out, "❌ Logged out from the phone. Delete %s and pair again.\n", b.cfg.DBPath)
		b.signal(b.loggedOut)
	case *events.Message:
		b.dispatchEvent(v)
	}
}

func (b *Bot) signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// pairingHint classifies a pairing failure into operator guidance based on
// known error message fragments.
func pairingHint(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "rate") || strings.Contains(msg, "429"):
		return "too many pairing attempts, wait a few minutes before retrying"
	case strings.Contains(msg, "not registered") || strings.Contains(msg, "unregistered"):
		return "this number does not appear to be registered on WhatsApp"
	case strings.Contains(msg, "websocket") || strings.Contains(msg, "connection") || strings.Contains(msg, "timeout"):
		return "network problem, check connectivity and retry"
	default:
		return "unexpected error, retrying may help"
	}
}

// restartDelay is the bounded exponential backoff for supervised restarts:
// 5s, 10s, 20s, 40s, capped at 80s.
func restartDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := restartBase << (attempt - 1)
	if d > restartCap {
		d = restartCap
	}
	return d
}
