package tracing

import (
	"fmt"
	"os"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// CSVWriter is a SpanWriter that stores spans in a CSV file.
type CSVWriter struct {
	path string
	file *os.File

	spans      []Span
	bufferSize int
}

// NewCSVWriter creates a new CSVWriter.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{
		path:       path,
		bufferSize: 1000,
	}
}

// Init creates the tracing csv file.
func (w *CSVWriter) Init() {
	if w.path == "" {
		w.path = "inemuri_trace_" + xid.New().String()
	}

	filename := w.path + ".csv"
	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	file, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	w.file = file

	fmt.Fprintf(file, "ID, Kind, What, Where, Start, End\n")

	atexit.Register(func() {
		w.Flush()
		err := w.file.Close()
		if err != nil {
			panic(err)
		}
	})
}

// Write buffers a span to be written to the CSV file.
func (w *CSVWriter) Write(span Span) {
	w.spans = append(w.spans, span)
	if len(w.spans) >= w.bufferSize {
		w.Flush()
	}
}

// Flush writes the buffered spans to the CSV file.
func (w *CSVWriter) Flush() {
	for _, span := range w.spans {
		fmt.Fprintf(w.file, "%s, %s, %s, %s, %.9f, %.9f\n",
			span.ID,
			span.Kind,
			span.What,
			span.Where,
			timeToSeconds(span.Start),
			timeToSeconds(span.End),
		)
	}

	w.spans = nil
}
