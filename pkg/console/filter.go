// Package console filters terminal output from the WhatsApp client library.
//
// whatsmeow and libsignal log verbose session/encryption diagnostics (key
// material, ratchet state, transient decrypt failures) that are not
// actionable for the operator and must never end up in captured logs. The
// filter sits between every output call site and the real sink: lines that
// contain a known noise pattern are dropped or replaced with a short
// sanitized notice, everything else passes through untouched.
package console

import "strings"

// defaultPatterns are case-sensitive substring signatures of diagnostic
// noise. Order only affects scan cost, never the outcome.
var defaultPatterns = []string{
	"privKey",
	"pubKey",
	"keyPair",
	"identityKey",
	"signedPreKey",
	"preKeys",
	"noiseKey",
	"advSecretKey",
	"Bad MAC",
	"failed to decrypt",
	"Failed to decrypt",
	"Closing open session",
	"Deleting existing session",
	"SessionEntry",
	"ClosedSessions",
	"Removing old closed session",
	"untrusted identity",
	"prekey bundle",
}

// defaultRewrites maps a matched pattern to the sanitized line emitted in its
// place. Patterns without an entry are dropped silently.
var defaultRewrites = map[string]string{
	"Closing open session":      "🔐 Encryption session updated",
	"Deleting existing session": "🔐 Encryption session updated",
}

// defaultReassure marks error-channel patterns that mean a recoverable
// session renegotiation. Suppressing one of these also emits ReassureNotice
// once on the info channel so the operator sees a benign status instead of a
// raw error.
var defaultReassure = map[string]bool{
	"Bad MAC":           true,
	"failed to decrypt": true,
	"Failed to decrypt": true,
}

// ReassureNotice is the informational line shown in place of a suppressed
// recoverable encryption error.
const ReassureNotice = "🔁 Encryption keys refreshed automatically, your messages are not affected"

// Decision is the outcome of classifying one line of output.
type Decision int

const (
	Pass Decision = iota
	Rewrite
	Suppress
)

// Matcher checks text against a fixed set of substring patterns.
type Matcher struct {
	patterns []string
}

func NewMatcher(patterns ...string) *Matcher {
	if len(patterns) == 0 {
		patterns = defaultPatterns
	}
	return &Matcher{patterns: patterns}
}

// Match returns the first pattern contained in text. Matching is
// case-sensitive and unanchored; the empty string matches nothing.
func (m *Matcher) Match(text string) (string, bool) {
	if m == nil || text == "" {
		return "", false
	}
	for _, p := range m.patterns {
		if strings.Contains(text, p) {
			return p, true
		}
	}
	return "", false
}

// Filter combines a pattern matcher with the rewrite and reassurance tables.
// All tables are fixed at construction; classification has no hidden state,
// so independent Filter instances always agree on the same input.
type Filter struct {
	matcher  *Matcher
	rewrites map[string]string
	reassure map[string]bool
}

// NewFilter returns a Filter with the built-in pattern and rewrite tables.
func NewFilter() *Filter {
	return &Filter{
		matcher:  NewMatcher(),
		rewrites: defaultRewrites,
		reassure: defaultReassure,
	}
}

// NewFilterWithRules builds a Filter from explicit tables, mainly for tests.
func NewFilterWithRules(m *Matcher, rewrites map[string]string, reassure map[string]bool) *Filter {
	if m == nil {
		m = NewMatcher()
	}
	return &Filter{matcher: m, rewrites: rewrites, reassure: reassure}
}

// Classify decides what happens to one line of output. For Rewrite the
// replacement line is returned; for Suppress and Pass it is empty. The
// matched pattern is returned for Rewrite and Suppress so callers can apply
// channel-specific policy.
func (f *Filter) Classify(text string) (Decision, string, string) {
	if f == nil {
		return Pass, "", ""
	}
	pattern, ok := f.matcher.Match(text)
	if !ok {
		return Pass, "", ""
	}
	if repl, ok := f.rewrites[pattern]; ok {
		return Rewrite, repl, pattern
	}
	return Suppress, "", pattern
}

// Reassures reports whether a suppressed pattern should produce the
// informational reassurance line on the error channel.
func (f *Filter) Reassures(pattern string) bool {
	return f != nil && f.reassure[pattern]
}
