package core

import (
	"context"

	"pkt.systems/echowave/internal/record"
	"pkt.systems/echowave/internal/textdec"
	"pkt.systems/echowave/schema"
)

// subscription tracks one channel's echo process and its per-stream
// pipeline state. Decoder and parser state live for the
// subscription's lifetime and are released on termination; the pump
// goroutine is their only user.
type subscription struct {
	channel schema.ChannelID
	state   schema.SubscriptionState
	handle  RunHandle
	cancel  context.CancelFunc

	decoder     *textdec.Decoder
	diagDecoder *textdec.Decoder
	parser      *record.Parser
	logTail     string
	diagTail    string
}

func newSubscription(channel schema.ChannelID, encoding textdec.Encoding) *subscription {
	return &subscription{
		channel:     channel,
		state:       schema.SubscriptionStarting,
		decoder:     textdec.New(encoding),
		diagDecoder: textdec.New(encoding),
		parser:      record.NewParser(),
	}
}

// release drops decoder/parser state once the subscription reached a
// terminal state.
func (sub *subscription) release() {
	sub.decoder = nil
	sub.diagDecoder = nil
	sub.parser = nil
	sub.logTail = ""
	sub.diagTail = ""
}

// completeLines appends text to the stream's pending tail and returns
// the lines completed by it.
func completeLines(tail *string, text string) []string {
	if text == "" {
		return nil
	}
	combined := *tail + text
	var lines []string
	for {
		idx := indexNewline(combined)
		if idx < 0 {
			break
		}
		lines = append(lines, trimCR(combined[:idx]))
		combined = combined[idx+1:]
	}
	*tail = combined
	return lines
}

func indexNewline(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return i
		}
	}
	return -1
}

func trimCR(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\r' {
		return s[:n-1]
	}
	return s
}
