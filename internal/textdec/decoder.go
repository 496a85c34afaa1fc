// Package textdec converts raw subprocess output bytes into text.
//
// Encoding is frequently undeclared: the echo subprocess inherits the
// platform locale, so output may be UTF-8 or a legacy Shift-JIS code
// page. In auto mode the decoder buffers bytes until it has enough
// evidence to commit, then replays the buffer through the chosen
// decoder. Decoding never fails; invalid input degrades to
// substitution characters and is flagged via Degraded.
package textdec

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Encoding selects the byte decoding strategy.
type Encoding string

const (
	// EncodingAuto buffers and auto-detects between UTF-8 and Shift-JIS.
	EncodingAuto Encoding = "auto"
	// EncodingUTF8 decodes as UTF-8 from the first byte.
	EncodingUTF8 Encoding = "utf8"
	// EncodingShiftJIS decodes as Shift-JIS from the first byte.
	EncodingShiftJIS Encoding = "shiftjis"
)

// ParseEncoding validates a config-supplied encoding name.
func ParseEncoding(name string) (Encoding, error) {
	switch Encoding(strings.ToLower(strings.TrimSpace(name))) {
	case "", EncodingAuto:
		return EncodingAuto, nil
	case EncodingUTF8, Encoding("utf-8"):
		return EncodingUTF8, nil
	case EncodingShiftJIS, Encoding("shift-jis"), Encoding("sjis"):
		return EncodingShiftJIS, nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", name)
	}
}

// autoDetectLimit is how many pending bytes auto mode accumulates
// before it must commit to an encoding.
const autoDetectLimit = 1024

// Decoder converts an open-ended sequence of byte chunks into text.
// Multi-byte sequences may span chunk boundaries in either encoding.
// Not safe for concurrent use; each subscription owns one Decoder.
type Decoder struct {
	mode     Encoding
	pending  []byte
	carry    []byte
	legacy   *encoding.Decoder
	degraded bool
}

// New returns a Decoder for the given encoding. An empty encoding
// means auto detection.
func New(mode Encoding) *Decoder {
	if mode == "" {
		mode = EncodingAuto
	}
	return &Decoder{mode: mode}
}

// Write consumes a chunk and returns any text decodable so far. In
// auto mode nothing is returned until the encoding is committed.
func (d *Decoder) Write(p []byte) string {
	if d.mode == EncodingAuto {
		d.pending = append(d.pending, p...)
		if len(d.pending) < autoDetectLimit {
			return ""
		}
		return d.decide(false)
	}
	return d.decode(p, false)
}

// End flushes trailing state and returns any remaining text. The
// decoder must not be written to afterwards.
func (d *Decoder) End() string {
	if d.mode == EncodingAuto {
		return d.decide(true)
	}
	return d.decode(nil, true)
}

// Degraded reports whether any substitution character was emitted.
func (d *Decoder) Degraded() bool {
	return d.degraded
}

// decide commits auto mode to UTF-8 or Shift-JIS and replays the
// pending buffer through the chosen decoder. An incomplete UTF-8 tail
// is excluded from the probe so that a multi-byte sequence split at
// the detection threshold cannot force a false Shift-JIS commit.
func (d *Decoder) decide(atEOF bool) string {
	buf := d.pending
	d.pending = nil
	probe := buf
	if !atEOF {
		if n := incompleteTailLen(probe); n > 0 {
			probe = probe[:len(probe)-n]
		}
	}
	if strings.ContainsRune(decodeUTF8Replace(probe), utf8.RuneError) {
		d.mode = EncodingShiftJIS
	} else {
		d.mode = EncodingUTF8
	}
	return d.decode(buf, atEOF)
}

func (d *Decoder) decode(p []byte, atEOF bool) string {
	switch d.mode {
	case EncodingShiftJIS:
		return d.decodeShiftJIS(p, atEOF)
	default:
		return d.decodeUTF8(p, atEOF)
	}
}

func (d *Decoder) decodeUTF8(p []byte, atEOF bool) string {
	src := p
	if len(d.carry) > 0 {
		src = append(d.carry, p...)
		d.carry = nil
	}
	if !atEOF {
		if n := incompleteTailLen(src); n > 0 {
			d.carry = append([]byte(nil), src[len(src)-n:]...)
			src = src[:len(src)-n]
		}
	}
	if len(src) == 0 {
		return ""
	}
	if utf8.Valid(src) {
		return string(src)
	}
	d.degraded = true
	return decodeUTF8Replace(src)
}

func (d *Decoder) decodeShiftJIS(p []byte, atEOF bool) string {
	if d.legacy == nil {
		d.legacy = japanese.ShiftJIS.NewDecoder()
	}
	src := p
	if len(d.carry) > 0 {
		src = append(d.carry, p...)
		d.carry = nil
	}
	if len(src) == 0 {
		return ""
	}
	var out strings.Builder
	dst := make([]byte, len(src)*utf8.UTFMax+utf8.UTFMax)
	for {
		nDst, nSrc, err := d.legacy.Transform(dst, src, atEOF)
		out.Write(dst[:nDst])
		src = src[nSrc:]
		switch err {
		case nil:
			text := out.String()
			if strings.ContainsRune(text, utf8.RuneError) {
				d.degraded = true
			}
			return text
		case transform.ErrShortDst:
			continue
		case transform.ErrShortSrc:
			if !atEOF {
				d.carry = append([]byte(nil), src...)
				text := out.String()
				if strings.ContainsRune(text, utf8.RuneError) {
					d.degraded = true
				}
				return text
			}
			// At EOF a short source is an unfinished double-byte
			// sequence; substitute and stop.
			out.WriteRune(utf8.RuneError)
			d.degraded = true
			return out.String()
		default:
			// The Shift-JIS decoder substitutes rather than erroring;
			// treat anything else as one undecodable byte.
			out.WriteRune(utf8.RuneError)
			d.degraded = true
			if len(src) == 0 {
				return out.String()
			}
			src = src[1:]
		}
	}
}

// decodeUTF8Replace decodes src as UTF-8, substituting U+FFFD for
// each invalid byte.
func decodeUTF8Replace(src []byte) string {
	if utf8.Valid(src) {
		return string(src)
	}
	var out strings.Builder
	out.Grow(len(src))
	for len(src) > 0 {
		r, size := utf8.DecodeRune(src)
		out.WriteRune(r)
		src = src[size:]
	}
	return out.String()
}

// incompleteTailLen returns the number of trailing bytes that form an
// incomplete but so-far-valid UTF-8 sequence, or 0 when the buffer
// ends on a sequence boundary (or ends with bytes that can never
// complete).
func incompleteTailLen(p []byte) int {
	n := len(p)
	for i := 1; i <= utf8.UTFMax && i <= n; i++ {
		b := p[n-i]
		if b < utf8.RuneSelf {
			return 0
		}
		if b >= 0xC0 {
			if want := utf8SeqLen(b); want > i {
				return i
			}
			return 0
		}
	}
	return 0
}

func utf8SeqLen(b byte) int {
	switch {
	case b >= 0xF5:
		return 0
	case b >= 0xF0:
		return 4
	case b >= 0xE0:
		return 3
	case b >= 0xC2:
		return 2
	default:
		return 0
	}
}
