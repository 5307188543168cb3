package lang

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
)

// diagnosticWrapWidth is the column width diagnostics and REPL help text
// are wrapped to before being surfaced to a terminal.
const diagnosticWrapWidth = 80

// FormatPrint renders a Value the way the postfix `!` operator does:
// numbers/booleans/nil as their canonical text, strings as their raw
// contents, arrays/tables recursively by element, closures by shape.
func FormatPrint(v Value) string {
	return formatValue(v, false)
}

// FormatDebug renders a Value the way the postfix `?` operator does.
// This iteration is identical to FormatPrint except that strings are
// quoted; tables print in an unspecified but deterministic order.
func FormatDebug(v Value) string {
	return formatValue(v, true)
}

func formatValue(v Value, debug bool) string {
	switch v.Type() {
	case Nil:
		return "nil"
	case Number:
		return formatNumber(v.Num())
	case Boolean:
		if v.Bool() {
			return "true"
		}
		return "false"
	case String:
		if debug {
			return fmt.Sprintf("%q", v.Str())
		}
		return v.Str()
	case Array:
		parts := make([]string, len(v.Elements()))
		for i, e := range v.Elements() {
			parts[i] = formatValue(e, debug)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Table:
		keys := make([]string, 0, len(v.Entries()))
		for k := range v.Entries() {
			keys = append(keys, k)
		}
		sortStrings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", k, formatValue(v.Entries()[k], debug))
		}
		return "#{" + strings.Join(parts, ", ") + "}"
	case ExclusiveRange:
		start, end := v.RangeBounds()
		return fmt.Sprintf("%s..%s", formatNumber(start), formatNumber(end))
	case InclusiveRange:
		start, end := v.RangeBounds()
		return fmt.Sprintf("%s..=%s", formatNumber(start), formatNumber(end))
	case Closure:
		c := v.ClosureValue()
		if c.Kind == NativeClosure {
			return "|...| { NativeCode }"
		}
		return fmt.Sprintf("|%s| { ... }", strings.Join(c.Params, ", "))
	default:
		return "????"
	}
}

// sortStrings is a tiny insertion sort; table key sets are small enough
// that pulling in sort.Strings for one call site isn't worth it, but
// debug output still needs a deterministic order across runs.
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// WrapDiagnostic wraps a multi-line diagnostic or help message to a
// terminal-friendly width, for use by the CLI and REPL when printing
// SyntaxError.FullMessage() or similar.
func WrapDiagnostic(text string) string {
	return rosed.Edit(text).Wrap(diagnosticWrapWidth).String()
}
