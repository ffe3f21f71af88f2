package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// prettyStyles colors each part of a pretty text record.
// Colors degrade to plain text when the output is not a terminal.
type prettyStyles struct {
	key, str, num, dur, ts lipgloss.Style
	yes, no                lipgloss.Style
	trace, debug, info     lipgloss.Style
	warn, err              lipgloss.Style
}

func makePrettyStyles(w io.Writer) prettyStyles {
	r := lipgloss.NewRenderer(w)

	return prettyStyles{
		key:   r.NewStyle().Foreground(lipgloss.Color("8")),
		str:   r.NewStyle().Foreground(lipgloss.Color("6")),
		num:   r.NewStyle().Foreground(lipgloss.Color("3")),
		dur:   r.NewStyle().Foreground(lipgloss.Color("5")),
		ts:    r.NewStyle().Foreground(lipgloss.Color("4")),
		yes:   r.NewStyle().Foreground(lipgloss.Color("2")),
		no:    r.NewStyle().Foreground(lipgloss.Color("1")),
		trace: r.NewStyle().Foreground(lipgloss.Color("8")),
		debug: r.NewStyle().Foreground(lipgloss.Color("4")),
		info:  r.NewStyle().Foreground(lipgloss.Color("2")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		err:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

func (s prettyStyles) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return s.err
	case l >= slog.LevelWarn:
		return s.warn
	case l >= slog.LevelInfo:
		return s.info
	case l >= slog.LevelDebug:
		return s.debug
	default:
		return s.trace
	}
}

// prettyHandler is a colorized key=value handler.
type prettyHandler struct {
	opts   slog.HandlerOptions
	styles prettyStyles
	mu     *sync.Mutex
	w      io.Writer
	attrs  []byte // preformatted attrs from WithAttrs
	group  string // dotted key prefix from WithGroup
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		styles: makePrettyStyles(w),
		mu:     &sync.Mutex{},
		w:      w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() {
		h.writeBuiltin(buf, slog.Time(slog.TimeKey, r.Time))
	}

	h.writeBuiltin(buf, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			h.writeBuiltin(buf, slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	h.writeBuiltin(buf, slog.String(slog.MessageKey, r.Message))

	if len(h.attrs) > 0 {
		buf.WriteByte(' ')
		buf.Write(h.attrs)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(buf, h.group, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	buf := bytes.NewBuffer(bytes.Clone(h.attrs))

	for _, a := range attrs {
		h.writeAttr(buf, h.group, a)
	}

	c := *h
	c.attrs = buf.Bytes()

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.group = h.group + name + "."

	return &c
}

// writeBuiltin writes one of the record's own fields, which are subject to
// ReplaceAttr but never grouped.
func (h *prettyHandler) writeBuiltin(buf *bytes.Buffer, a slog.Attr) {
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Key == slog.LevelKey {
		h.writeKey(buf, a.Key)
		buf.WriteString(h.styles.level(levelOf(a.Value)).Render(a.Value.String()))

		return
	}

	h.writeKey(buf, a.Key)
	h.writeValue(buf, a.Value)
}

func (h *prettyHandler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if h.opts.ReplaceAttr != nil && a.Value.Kind() != slog.KindGroup {
		var groups []string
		if prefix != "" {
			groups = strings.Split(strings.TrimSuffix(prefix, "."), ".")
		}

		a = h.opts.ReplaceAttr(groups, a)
		a.Value = a.Value.Resolve()
	}

	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		sub := prefix
		if a.Key != "" {
			sub += a.Key + "."
		}

		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, sub, ga)
		}

		return
	}

	h.writeKey(buf, prefix+a.Key)
	h.writeValue(buf, a.Value)
}

func (h *prettyHandler) writeKey(buf *bytes.Buffer, key string) {
	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}

	buf.WriteString(h.styles.key.Render(key))
	buf.WriteByte('=')
}

func (h *prettyHandler) writeValue(buf *bytes.Buffer, v slog.Value) {
	s := h.styles

	switch v.Kind() {
	case slog.KindInt64:
		buf.WriteString(s.num.Render(strconv.FormatInt(v.Int64(), 10)))

	case slog.KindUint64:
		buf.WriteString(s.num.Render(strconv.FormatUint(v.Uint64(), 10)))

	case slog.KindFloat64:
		buf.WriteString(s.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64)))

	case slog.KindBool:
		if v.Bool() {
			buf.WriteString(s.yes.Render("true"))
		} else {
			buf.WriteString(s.no.Render("false"))
		}

	case slog.KindDuration:
		buf.WriteString(s.dur.Render(v.Duration().String()))

	case slog.KindTime:
		buf.WriteString(s.ts.Render(v.Time().Format(time.RFC3339)))

	default:
		buf.WriteString(s.str.Render(quote(v.String())))
	}
}

// quote quotes s only when it would otherwise be ambiguous in key=value output.
func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}

	return s
}

func levelOf(v slog.Value) slog.Level {
	if l, ok := v.Any().(slog.Level); ok {
		return l
	}

	return slog.Level(ParseLevel(v.String()))
}
