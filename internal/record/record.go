// Package record parses `---`-delimited, YAML-like echo output into
// flat path-addressable records and extracts waveform samples from
// them. It implements the subset of the format the echo subprocess
// actually emits; anything unrecognized is skipped, never an error.
package record

// Delimiter is the record sentinel line. This is a protocol constant,
// not configurable.
const Delimiter = "---"

// Record is a flat, insertion-ordered mapping from dotted field path
// (e.g. "twist.linear.x") to raw scalar text. Records are ephemeral:
// they exist only between parse and extraction.
type Record struct {
	paths  []string
	values map[string]string
}

func newRecord() *Record {
	return &Record{values: make(map[string]string)}
}

// set records path -> value. A later occurrence of the same path
// overwrites the value but keeps its original document position.
func (r *Record) set(path, value string) {
	if _, ok := r.values[path]; !ok {
		r.paths = append(r.paths, path)
	}
	r.values[path] = value
}

// Get returns the scalar text at the given dotted path.
func (r *Record) Get(path string) (string, bool) {
	value, ok := r.values[path]
	return value, ok
}

// Paths returns the field paths in document order.
func (r *Record) Paths() []string {
	return r.paths
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.paths)
}
