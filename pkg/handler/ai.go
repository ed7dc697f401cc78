package handler

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	waProto "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

const (
	defaultModel       = "gpt-4o-mini"
	maxHistoryMessages = 20

	systemPrompt = `You are a helpful WhatsApp assistant. Keep replies short and conversational. When the user sends an image, describe or answer questions about what you see.`
)

// AIConfig configures the AI responder.
type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// AIResponder answers inbound messages with chat completions, keeping a
// bounded per-chat history. Image messages are downloaded, downscaled and
// attached to the request.
type AIResponder struct {
	client openai.Client
	model  string
	log    waLog.Logger

	mu      sync.Mutex
	history map[string][]openai.ChatCompletionMessageParamUnion
}

func NewAIResponder(cfg AIConfig, log waLog.Logger) *AIResponder {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &AIResponder{
		client:  openai.NewClient(opts...),
		model:   model,
		log:     log,
		history: make(map[string][]openai.ChatCompletionMessageParamUnion),
	}
}

func (a *AIResponder) Handle(ctx context.Context, api API, msg *events.Message) error {
	userMsg, err := a.buildUserMessage(ctx, api, msg)
	if err != nil {
		return err
	}
	if userMsg == nil {
		// Nothing we can respond to (audio, documents, stickers).
		return nil
	}

	chatKey := msg.Info.Chat.String()
	messages := a.appendHistory(chatKey, *userMsg)

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       a.model,
		Messages:    messages,
		MaxTokens:   openai.Int(500),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("chat completion returned no choices")
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	a.appendHistory(chatKey, openai.AssistantMessage(reply))

	_, err = api.SendMessage(ctx, msg.Info.Chat, &waProto.Message{
		Conversation: proto.String(reply),
	})
	if err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

// buildUserMessage converts an inbound message into a completion request
// part. Returns nil for message kinds the responder does not understand.
func (a *AIResponder) buildUserMessage(ctx context.Context, api API, msg *events.Message) (*openai.ChatCompletionMessageParamUnion, error) {
	text := Text(msg.Message)

	if img := msg.Message.GetImageMessage(); img != nil {
		data, err := api.Download(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("failed to download image: %w", err)
		}
		small, err := prepareForModel(data)
		if err != nil {
			return nil, err
		}
		a.log.Infof("Image resized for model: %d -> %d bytes", len(data), len(small))

		prompt := text
		if prompt == "" {
			prompt = "What is in this image?"
		}
		m := openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(prompt),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(small)),
			}),
		})
		return &m, nil
	}

	if text == "" {
		return nil, nil
	}
	m := openai.UserMessage(text)
	return &m, nil
}

// appendHistory records one message for a chat, trims the window to
// maxHistoryMessages, and returns the full prompt including the system
// message.
func (a *AIResponder) appendHistory(chatKey string, m openai.ChatCompletionMessageParamUnion) []openai.ChatCompletionMessageParamUnion {
	a.mu.Lock()
	defer a.mu.Unlock()

	h := append(a.history[chatKey], m)
	if len(h) > maxHistoryMessages {
		h = h[len(h)-maxHistoryMessages:]
	}
	a.history[chatKey] = h

	prompt := make([]openai.ChatCompletionMessageParamUnion, 0, len(h)+1)
	prompt = append(prompt, openai.SystemMessage(systemPrompt))
	return append(prompt, h...)
}
