package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/bcalc/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "reset", "edit", "clear", "quit"}

// isNameRune reports whether r may appear in an identifier. Everything else
// (operators, punctuation, digits, whitespace) delimits completion words.
func isNameRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

// wordBounds returns the identifier at the cursor position and its byte
// boundaries within input. The word is empty when the cursor is not touching
// an identifier.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isNameRune(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isNameRune(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// nameCandidates returns every name bound in env together with the language
// keywords, sorted and without duplicates.
func nameCandidates(env *lang.Environment) []string {
	names := append(env.Names(), lang.Keywords()...)
	slices.Sort(names)

	return slices.Compact(names)
}

// isCallable reports whether name is bound to a user or native function.
func isCallable(env *lang.Environment, name string) bool {
	b, ok := env.Get(name)
	if !ok {
		return false
	}

	k := b.BindingKind()

	return k == lang.BindingFunction || k == lang.BindingNative
}

// computeMatches calculates the fuzzy match results for the word at the cursor.
// It returns the matches (ranked best-first), the candidate list, and the word
// boundaries. An empty word has no matches so the hint line stays visible.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	word, wordStart, wordEnd := wordBounds(m.input.Value(), m.input.Position())

	if word == "" {
		return nil, nil, wordStart, wordEnd
	}

	if m.mode == modeCtrl {
		candidates = ctrlCommands
	} else {
		candidates = nameCandidates(m.engine.session.Env())
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// completeLine returns the completions of the identifier ending line, each as
// a full replacement line. Used by the plain REPL.
func completeLine(env *lang.Environment, line string) []string {
	word, start, _ := wordBounds(line, len(line))
	if word == "" {
		return nil
	}

	matches := fuzzy.Find(word, nameCandidates(env))
	out := make([]string, 0, len(matches))

	for _, match := range matches {
		out = append(out, line[:start]+match.Str)
	}

	return out
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. The selected candidate (when tabbing) uses
// the selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	callable func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		selected := tabActive && i == suggIdx
		rendered := renderCandidate(match, selected, callable(match.Str))

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Functions are displayed with a "()" suffix that is not part of
// the completion.
func renderCandidate(match fuzzy.Match, selected, callable bool) string {
	baseStyle := suggestionStyle
	highlightStyle := matchStyle

	if selected {
		baseStyle = selectedStyle
		highlightStyle = selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	if callable {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}

// listBindings renders every binding in env, one per line, grouped natives
// last so that user bindings appear first.
func listBindings(env *lang.Environment) string {
	var user, native []string

	for name, b := range env.All() {
		line := "  " + lang.Describe(name, b)

		if b.BindingKind() == lang.BindingNative {
			native = append(native, hintStyle.Render(line))
		} else {
			user = append(user, line)
		}
	}

	if len(user) == 0 {
		user = append(user, hintStyle.Render("  (no bindings)"))
	}

	return strings.Join(append(user, native...), "\n")
}
