package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/bcalc/lang"
)

// Signature hint styles.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string
	argIndex int  // 0-based index of the argument under the cursor
	inCall   bool // cursor is inside the argument list
}

// detectFunctionCall reports the innermost call whose argument list contains
// the cursor. Parenthesized groups that are not calls are skipped over.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	// Operators and delimiters are all ASCII, so scanning bytes is safe.
	depth := 0

	for open := cursor - 1; open >= 0; open-- {
		switch input[open] {
		case ')':
			depth++

			continue

		case '(':
			if depth > 0 {
				depth--

				continue
			}
		default:
			continue
		}

		name := callName(input[:open])
		if name == "" {
			// A grouping paren; keep looking for an enclosing call.
			continue
		}

		return functionCall{
			name:     name,
			argIndex: argIndex(input[open+1 : cursor]),
			inCall:   true,
		}
	}

	return functionCall{}
}

// callName returns the identifier immediately preceding an opening paren,
// ignoring whitespace between them. Keywords are not call names.
func callName(prefix string) string {
	prefix = strings.TrimRight(prefix, " \t")

	start := len(prefix)
	for start > 0 && isNameRune(rune(prefix[start-1])) {
		start--
	}

	name := prefix[start:]
	if lang.IsReserved(name) {
		return ""
	}

	return name
}

// argIndex counts the commas at nesting depth zero in args.
func argIndex(args string) int {
	index, depth := 0, 0

	for i := range len(args) {
		switch args[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				index++
			}
		}
	}

	return index
}

// paramsOf returns the parameter names of the function bound to name in env.
// It reports false if name is not bound to a function.
func paramsOf(env *lang.Environment, name string) ([]string, bool) {
	b, ok := env.Get(name)
	if !ok {
		return nil, false
	}

	switch fn := b.(type) {
	case lang.Function:
		return fn.Params, true

	case lang.Native:
		return []string{"x"}, true

	default:
		return nil, false
	}
}

// renderSignatureHint renders name(params...) with the parameter at argIdx
// highlighted. Arguments past the last parameter highlight nothing.
func renderSignatureHint(name string, params []string, argIdx int) string {
	if name == "" {
		return ""
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		if i == argIdx {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	if argIdx >= len(params) && len(params) > 0 {
		b.WriteString(errorStyle.Render("  too many arguments"))
	}

	return b.String()
}
