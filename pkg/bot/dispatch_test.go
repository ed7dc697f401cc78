package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	"wa-launcher/pkg/handler"
)

type stubHandler struct {
	err     error
	panicVal interface{}
	calls   int
}

func (s *stubHandler) Handle(ctx context.Context, api handler.API, msg *events.Message) error {
	s.calls++
	if s.panicVal != nil {
		panic(s.panicVal)
	}
	return s.err
}

func testMessage(id string) *events.Message {
	return &events.Message{Info: types.MessageInfo{ID: types.MessageID(id)}}
}

func TestDispatchSuccess(t *testing.T) {
	h := &stubHandler{}
	res := Dispatch(context.Background(), h, nil, testMessage("MSG-1"))

	if res.Failed() {
		t.Fatalf("result failed: %v", res.Err)
	}
	if res.MessageID != "MSG-1" {
		t.Errorf("MessageID = %q, want MSG-1", res.MessageID)
	}
	if h.calls != 1 {
		t.Errorf("handler called %d times, want 1", h.calls)
	}
}

func TestDispatchError(t *testing.T) {
	wantErr := errors.New("model unavailable")
	res := Dispatch(context.Background(), &stubHandler{err: wantErr}, nil, testMessage("MSG-2"))

	if !res.Failed() {
		t.Fatal("expected a failed result")
	}
	if !errors.Is(res.Err, wantErr) {
		t.Errorf("Err = %v, want %v", res.Err, wantErr)
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	res := Dispatch(context.Background(), &stubHandler{panicVal: "boom"}, nil, testMessage("MSG-3"))

	if !res.Failed() {
		t.Fatal("expected panic to surface as a failed result")
	}
	if !strings.Contains(res.Err.Error(), "boom") {
		t.Errorf("Err = %v, want panic value included", res.Err)
	}
}

func TestDispatchIsolationBetweenMessages(t *testing.T) {
	h := &stubHandler{panicVal: "boom"}
	_ = Dispatch(context.Background(), h, nil, testMessage("A"))

	// Next message is handled normally once the handler recovers.
	h.panicVal = nil
	res := Dispatch(context.Background(), h, nil, testMessage("B"))
	if res.Failed() {
		t.Errorf("second dispatch failed: %v", res.Err)
	}
	if h.calls != 2 {
		t.Errorf("handler called %d times, want 2", h.calls)
	}
}
