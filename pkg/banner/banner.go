// Package banner renders the startup header and pairing instructions.
package banner

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const fallbackWidth = 80

// Renderer writes centered operator-facing text to an injected sink.
type Renderer struct {
	out   io.Writer
	width int
}

// New detects the terminal width from out when it is a tty, falling back to
// 80 columns otherwise.
func New(out io.Writer) *Renderer {
	width := fallbackWidth
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	return NewWithWidth(out, width)
}

func NewWithWidth(out io.Writer, width int) *Renderer {
	if width <= 0 {
		width = fallbackWidth
	}
	return &Renderer{out: out, width: width}
}

// Center pads a line so it sits in the middle of the terminal. Lines wider
// than the terminal are left untouched.
func (r *Renderer) Center(line string) string {
	pad := (r.width - len([]rune(line))) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + line
}

// Show prints the startup banner.
func (r *Renderer) Show(title, subtitle string) {
	rule := strings.Repeat("=", len(title)+8)
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.Center(rule))
	fmt.Fprintln(r.out, r.Center(title))
	if subtitle != "" {
		fmt.Fprintln(r.out, r.Center(subtitle))
	}
	fmt.Fprintln(r.out, r.Center(rule))
	fmt.Fprintln(r.out)
}

// PairingInstructions prints the pairing code issued for number together
// with the steps to enter it on the phone. The code is an opaque string
// owned by the WhatsApp servers.
func (r *Renderer) PairingInstructions(number, code string) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.Center("=== LINK YOUR PHONE ==="))
	fmt.Fprintln(r.out, r.Center(fmt.Sprintf("Number: +%s", number)))
	fmt.Fprintln(r.out, r.Center(fmt.Sprintf("Pairing code: %s", code)))
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "1. Open WhatsApp on your phone")
	fmt.Fprintln(r.out, "2. Go to Settings > Linked Devices > Link a Device")
	fmt.Fprintln(r.out, "3. Tap \"Link with phone number instead\"")
	fmt.Fprintf(r.out, "4. Enter the code: %s\n", code)
	fmt.Fprintln(r.out)
}
