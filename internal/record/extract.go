package record

import (
	"strconv"
	"strings"
	"time"

	"pkt.systems/echowave/schema"
)

// autoValuePath is preferred when no explicit field path is
// configured; std_msgs-style messages put their payload there.
const autoValuePath = "data"

// Extract selects one numeric sample from a record. With a non-empty
// fieldPath only that exact path is considered. With an empty path
// the "data" field wins if numeric, otherwise the first numeric leaf
// in document order. The timestamp comes from the record's header
// stamp when present, else from received. Returns false when the
// record yields no sample; that is a normal outcome, not an error.
func Extract(rec Record, fieldPath string, received time.Time) (schema.Sample, bool) {
	value, ok := selectValue(rec, fieldPath)
	if !ok {
		return schema.Sample{}, false
	}
	t, ok := stampSeconds(rec)
	if !ok {
		t = float64(received.UnixNano()) / 1e9
	}
	return schema.Sample{T: t, V: value}, true
}

func selectValue(rec Record, fieldPath string) (float64, bool) {
	if fieldPath != "" {
		raw, ok := rec.Get(fieldPath)
		if !ok {
			return 0, false
		}
		return Numeric(raw)
	}
	if raw, ok := rec.Get(autoValuePath); ok {
		if v, ok := Numeric(raw); ok {
			return v, true
		}
	}
	for _, path := range rec.Paths() {
		raw, _ := rec.Get(path)
		if v, ok := Numeric(raw); ok {
			return v, true
		}
	}
	return 0, false
}

// Numeric converts raw scalar text to a number: trim, strip one
// trailing comma, strip a single layer of matching quotes, map
// true/false to 1/0, then parse as a float literal.
func Numeric(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, ",")
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			s = s[1 : len(s)-1]
		}
	}
	switch strings.ToLower(s) {
	case "true":
		return 1, true
	case "false":
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// stampSeconds reads the record's timestamp fields, preferring the
// message header stamp over a top-level one.
func stampSeconds(rec Record) (float64, bool) {
	for _, prefix := range []string{"header.stamp.", "stamp."} {
		secRaw, okSec := rec.Get(prefix + "sec")
		nanoRaw, okNano := rec.Get(prefix + "nanosec")
		if !okSec || !okNano {
			continue
		}
		sec, errSec := strconv.ParseInt(strings.TrimSpace(secRaw), 10, 64)
		nano, errNano := strconv.ParseInt(strings.TrimSpace(nanoRaw), 10, 64)
		if errSec != nil || errNano != nil {
			continue
		}
		return float64(sec) + float64(nano)*1e-9, true
	}
	return 0, false
}
