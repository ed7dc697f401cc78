// Package handler receives inbound WhatsApp messages forwarded by the bot
// driver. Handlers are collaborators: the driver isolates their errors and
// panics per message, so a misbehaving handler never takes the process down.
package handler

import (
	"context"

	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// API is the slice of the WhatsApp client a handler may use.
// *whatsmeow.Client satisfies it.
type API interface {
	SendMessage(ctx context.Context, to types.JID, message *waProto.Message, extra ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error)
	Download(ctx context.Context, msg whatsmeow.DownloadableMessage) ([]byte, error)
}

// Handler processes one inbound message.
type Handler interface {
	Handle(ctx context.Context, api API, msg *events.Message) error
}

// Text extracts the displayable text of a message, covering both plain
// conversations and extended text messages. Returns "" for media-only
// messages.
func Text(msg *waProto.Message) string {
	if msg == nil {
		return ""
	}
	if t := msg.GetConversation(); t != "" {
		return t
	}
	if ext := msg.GetExtendedTextMessage(); ext != nil {
		return ext.GetText()
	}
	if img := msg.GetImageMessage(); img != nil {
		return img.GetCaption()
	}
	return ""
}

// LogHandler just records inbound traffic. It is the fallback when no AI
// responder is configured.
type LogHandler struct {
	Log waLog.Logger
}

func (h *LogHandler) Handle(ctx context.Context, api API, msg *events.Message) error {
	text := Text(msg.Message)
	if text == "" {
		h.Log.Infof("Incoming message from: %s (no text)", msg.Info.Sender)
		return nil
	}
	h.Log.Infof("Incoming message from: %s: %s", msg.Info.Sender, text)
	return nil
}
