package bot

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.mau.fi/whatsmeow/types/events"

	"wa-launcher/pkg/handler"
)

// DispatchResult is the typed outcome of handing one message to the handler.
// Failures stay visible here instead of only in log output.
type DispatchResult struct {
	MessageID string
	Err       error
}

func (r DispatchResult) Failed() bool { return r.Err != nil }

// Dispatch invokes h for one message and converts both returned errors and
// panics into the result. It never propagates, so a broken handler cannot
// affect subsequent messages.
func Dispatch(ctx context.Context, h handler.Handler, api handler.API, msg *events.Message) (res DispatchResult) {
	res.MessageID = string(msg.Info.ID)
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("handler panic: %v\n%s", r, debug.Stack())
		}
	}()
	res.Err = h.Handle(ctx, api, msg)
	return res
}

// dispatchEvent forwards non-group inbound messages to the handler, one
// goroutine per message, and logs failures through the filtered logger.
func (b *Bot) dispatchEvent(msg *events.Message) {
	if msg.Info.IsFromMe || msg.Info.IsGroup {
		return
	}
	go func() {
		if res := Dispatch(context.Background(), b.handler, b.client, msg); res.Failed() {
			b.log.Errorf("handler failed for message %s: %v", res.MessageID, res.Err)
		}
	}()
}
