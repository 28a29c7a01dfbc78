package render

import (
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

var (
	labelStyle   = color.New(color.Faint)
	headerStyle  = color.New(color.Bold, color.FgHiWhite)
	addressStyle = color.New(color.FgWhite)
	forStyle     = color.New(color.FgGreen)
	againstStyle = color.New(color.FgRed)
	abstainStyle = color.New(color.FgHiBlack)
	eventStyle   = color.New(color.FgCyan)
)

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	msg := message
	if len(msg) > 0 {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}

	return color.New(color.FgRed).Sprintf("❌ %s", msg)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// stateStyle picks the badge color for a proposal state name.
func stateStyle(state string) *color.Color {
	switch state {
	case "Executed":
		return color.New(color.FgGreen, color.Bold)
	case "Succeeded", "Queued":
		return color.New(color.FgCyan)
	case "Pending", "Active":
		return color.New(color.FgYellow)
	case "Defeated", "Expired":
		return color.New(color.FgRed)
	case "Canceled":
		return color.New(color.FgHiBlack)
	default:
		return color.New(color.FgWhite)
	}
}

// percentOf returns part/total as a percentage string with one decimal,
// or "-" when the total is zero or either amount does not parse.
func percentOf(part, total string) string {
	p, err := decimal.NewFromString(part)
	if err != nil {
		return "-"
	}
	t, err := decimal.NewFromString(total)
	if err != nil || t.IsZero() {
		return "-"
	}
	return p.Div(t).Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}

// sumAmounts adds decimal token amounts; unparsable values count as zero.
func sumAmounts(amounts ...string) string {
	total := decimal.Zero
	for _, a := range amounts {
		if d, err := decimal.NewFromString(a); err == nil {
			total = total.Add(d)
		}
	}
	return total.String()
}

// shortHex shortens long hex strings to 0x1234…abcd
func shortHex(s string) string {
	if len(s) <= 14 {
		return s
	}
	return s[:6] + "…" + s[len(s)-4:]
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
