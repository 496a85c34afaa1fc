package record

import "strings"

type indentLevel struct {
	indent int
	key    string
}

// Parser accumulates decoded text into lines and groups lines into
// records. State persists across Feed calls: an unterminated trailing
// fragment, the record being accumulated, and the indent stack used
// to build dotted paths. One Parser per subscription; discarded with
// it, so a stop mid-record drops the partial record.
type Parser struct {
	fragment string
	current  *Record
	stack    []indentLevel
}

// NewParser returns an empty Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Feed appends text to the pending input and returns any records
// completed by it. The final segment after the last newline is kept
// as the trailing fragment and not processed until terminated.
func (p *Parser) Feed(text string) []Record {
	if text == "" {
		return nil
	}
	lines := strings.Split(p.fragment+text, "\n")
	p.fragment = lines[len(lines)-1]
	var done []Record
	for _, line := range lines[:len(lines)-1] {
		if rec := p.consumeLine(line); rec != nil {
			done = append(done, *rec)
		}
	}
	return done
}

// consumeLine processes one complete line, returning a finished
// record when the line is the delimiter.
func (p *Parser) consumeLine(raw string) *Record {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil
	}
	if trimmed == Delimiter {
		return p.finishRecord()
	}
	// List items carry no addressable path; skip them without
	// touching the indent stack.
	if trimmed == "-" || strings.HasPrefix(trimmed, "- ") {
		return nil
	}
	colon := strings.Index(trimmed, ":")
	if colon <= 0 {
		return nil
	}
	key := strings.TrimSpace(trimmed[:colon])
	value := strings.TrimSpace(trimmed[colon+1:])
	indent := leadingIndent(raw)
	for len(p.stack) > 0 && indent <= p.stack[len(p.stack)-1].indent {
		p.stack = p.stack[:len(p.stack)-1]
	}
	if value == "" {
		p.stack = append(p.stack, indentLevel{indent: indent, key: key})
		return nil
	}
	var path strings.Builder
	for _, level := range p.stack {
		path.WriteString(level.key)
		path.WriteByte('.')
	}
	path.WriteString(key)
	if p.current == nil {
		p.current = newRecord()
	}
	p.current.set(path.String(), value)
	return nil
}

func (p *Parser) finishRecord() *Record {
	rec := p.current
	p.current = nil
	p.stack = p.stack[:0]
	return rec
}

func leadingIndent(line string) int {
	n := 0
	for n < len(line) && (line[n] == ' ' || line[n] == '\t') {
		n++
	}
	return n
}
