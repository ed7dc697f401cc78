package console

import (
	"fmt"
	"testing"

	waLog "go.mau.fi/whatsmeow/util/log"
)

// recordLogger captures every line the filtering logger lets through.
type recordLogger struct {
	infos  []string
	warns  []string
	errors []string
	debugs []string
}

func (r *recordLogger) Infof(msg string, args ...interface{}) {
	r.infos = append(r.infos, fmt.Sprintf(msg, args...))
}

func (r *recordLogger) Warnf(msg string, args ...interface{}) {
	r.warns = append(r.warns, fmt.Sprintf(msg, args...))
}

func (r *recordLogger) Errorf(msg string, args ...interface{}) {
	r.errors = append(r.errors, fmt.Sprintf(msg, args...))
}

func (r *recordLogger) Debugf(msg string, args ...interface{}) {
	r.debugs = append(r.debugs, fmt.Sprintf(msg, args...))
}

func (r *recordLogger) Sub(module string) waLog.Logger { return r }

func TestLoggerPassesCleanLines(t *testing.T) {
	rec := &recordLogger{}
	l := WrapLogger(rec, NewFilter())

	l.Infof("Connected to %s", "WhatsApp")
	l.Errorf("handler failed: %v", "timeout")

	if len(rec.infos) != 1 || rec.infos[0] != "Connected to WhatsApp" {
		t.Errorf("infos = %q, want one clean line", rec.infos)
	}
	if len(rec.errors) != 1 || rec.errors[0] != "handler failed: timeout" {
		t.Errorf("errors = %q, want one clean line", rec.errors)
	}
}

func TestLoggerSuppressesNoiseOnEveryChannel(t *testing.T) {
	rec := &recordLogger{}
	l := WrapLogger(rec, NewFilter())

	l.Debugf("identityKey: %s", "aabbcc")
	l.Infof("signedPreKey: %s", "ddeeff")
	l.Warnf("noiseKey rotation: %s", "001122")

	if len(rec.debugs)+len(rec.infos)+len(rec.warns) != 0 {
		t.Errorf("key material leaked: debugs=%q infos=%q warns=%q",
			rec.debugs, rec.infos, rec.warns)
	}
}

func TestLoggerErrorReassurance(t *testing.T) {
	rec := &recordLogger{}
	l := WrapLogger(rec, NewFilter())

	l.Errorf("Bad MAC error on device X")

	if len(rec.errors) != 0 {
		t.Errorf("errors = %q, want the raw error suppressed", rec.errors)
	}
	if len(rec.infos) != 1 || rec.infos[0] != ReassureNotice {
		t.Errorf("infos = %q, want exactly one reassurance line", rec.infos)
	}
}

func TestLoggerErrorSuppressionWithoutReassurance(t *testing.T) {
	rec := &recordLogger{}
	l := WrapLogger(rec, NewFilter())

	l.Errorf("dumping keyPair after failure")

	if len(rec.errors) != 0 || len(rec.infos) != 0 {
		t.Errorf("errors=%q infos=%q, want silence", rec.errors, rec.infos)
	}
}

func TestLoggerRewritesOnSameChannel(t *testing.T) {
	rec := &recordLogger{}
	l := WrapLogger(rec, NewFilter())

	l.Infof("Closing open session: %s", "device-123")

	if len(rec.infos) != 1 || rec.infos[0] != "🔐 Encryption session updated" {
		t.Errorf("infos = %q, want single sanitized line", rec.infos)
	}
}

func TestLoggerSubKeepsFilter(t *testing.T) {
	rec := &recordLogger{}
	sub := WrapLogger(rec, NewFilter()).Sub("Client")

	sub.Infof("advSecretKey: %s", "dump")
	sub.Infof("ready")

	if len(rec.infos) != 1 || rec.infos[0] != "ready" {
		t.Errorf("infos = %q, want filtering to survive Sub", rec.infos)
	}
}
