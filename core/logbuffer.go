package core

// logBuffer stores a channel's decoded scrollback lines with a
// maximum line count; oldest lines are dropped first.
type logBuffer struct {
	lines    []string
	maxLines int
}

func newLogBuffer(maxLines int) *logBuffer {
	return &logBuffer{maxLines: maxLines}
}

// Append adds lines to the buffer, trimming from the front when the
// limit is exceeded.
func (b *logBuffer) Append(lines ...string) {
	if len(lines) == 0 {
		return
	}
	b.lines = append(b.lines, lines...)
	if b.maxLines > 0 && len(b.lines) > b.maxLines {
		trim := len(b.lines) - b.maxLines
		b.lines = b.lines[trim:]
	}
}

// Snapshot returns up to limit of the most recent lines; limit <= 0
// returns everything.
func (b *logBuffer) Snapshot(limit int) []string {
	total := len(b.lines)
	if limit <= 0 || limit > total {
		limit = total
	}
	out := make([]string, limit)
	copy(out, b.lines[total-limit:])
	return out
}
