package debug

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.Config{
	IndentionStep:                 0,
	MarshalFloatWith6Digits:       true,
	EscapeHTML:                    false,
	SortMapKeys:                   true,
	UseNumber:                     false,
	DisallowUnknownFields:         false,
	TagKey:                        "json",
	OnlyTaggedField:               false,
	ValidateJsonRawMessage:        false,
	ObjectFieldMustBeSimpleString: true,
	CaseSensitive:                 true,
}.Froze()

// FrameRecord is one line of the frame trace.
type FrameRecord struct {
	Frame     int        `json:"frame"`
	Time      float64    `json:"t"`
	DT        float64    `json:"dt"`
	Camera    [3]float64 `json:"camera"`
	Target    [3]float64 `json:"target"`
	Ground    float64    `json:"ground"`
	Tiles     int        `json:"tiles"`
	Pending   int        `json:"pending"`
	MinZ      float64    `json:"minZ"`
	MaxZ      float64    `json:"maxZ"`
	Span      float64    `json:"span"`
	Recycled  int        `json:"recycled"`
	GapFilled bool       `json:"gapFilled,omitempty"`
}

// Tracer writes frame records as JSON lines.
type Tracer struct {
	w      *bufio.Writer
	stream *jsoniter.Stream
	closer io.Closer
	count  int
}

// NewTracer writes records to w. If w is an io.Closer it is closed by Close.
func NewTracer(w io.Writer) *Tracer {
	bw := bufio.NewWriter(w)
	t := &Tracer{
		w:      bw,
		stream: jsoniter.NewStream(json, bw, 512),
	}
	if c, ok := w.(io.Closer); ok {
		t.closer = c
	}
	return t
}

// OpenTracer creates (or truncates) a trace file.
func OpenTracer(path string) (*Tracer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating trace dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating trace file: %w", err)
	}
	return NewTracer(f), nil
}

// Write appends one record.
func (t *Tracer) Write(rec *FrameRecord) error {
	t.stream.WriteVal(rec)
	t.stream.WriteRaw("\n")
	if err := t.stream.Flush(); err != nil {
		return fmt.Errorf("writing frame %d: %w", rec.Frame, err)
	}
	if t.stream.Error != nil {
		return fmt.Errorf("encoding frame %d: %w", rec.Frame, t.stream.Error)
	}
	t.count++
	return nil
}

// Count returns the number of records written.
func (t *Tracer) Count() int {
	return t.count
}

// Close flushes buffered records and closes the underlying writer.
func (t *Tracer) Close() error {
	err := t.w.Flush()
	if t.closer != nil {
		if cerr := t.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// ReadTrace decodes a JSON-lines trace.
func ReadTrace(r io.Reader) ([]FrameRecord, error) {
	var out []FrameRecord
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec FrameRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return out, fmt.Errorf("line %d: %w", len(out)+1, err)
		}
		out = append(out, rec)
	}
	return out, sc.Err()
}
