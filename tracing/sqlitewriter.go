package tracing

import (
	"database/sql"
	"fmt"
	"os"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// SQLiteWriter is a SpanWriter that stores spans in a SQLite database.
type SQLiteWriter struct {
	*sql.DB
	statement *sql.Stmt

	dbName    string
	spans     []Span
	batchSize int
}

// NewSQLiteWriter creates a new SQLiteWriter. If path is empty, a unique
// database name is generated at Init time.
func NewSQLiteWriter(path string) *SQLiteWriter {
	w := &SQLiteWriter{
		dbName:    path,
		batchSize: 100000,
	}

	atexit.Register(func() { w.Flush() })

	return w
}

// Init establishes a connection to the database.
func (w *SQLiteWriter) Init() {
	w.createDatabase()
	w.createTable()
	w.prepareStatement()
}

// Write buffers a span to be written to the database.
func (w *SQLiteWriter) Write(span Span) {
	w.spans = append(w.spans, span)
	if len(w.spans) >= w.batchSize {
		w.Flush()
	}
}

// Flush writes all the buffered spans to the database.
func (w *SQLiteWriter) Flush() {
	if len(w.spans) == 0 {
		return
	}

	w.mustExecute("BEGIN TRANSACTION")
	defer w.mustExecute("COMMIT TRANSACTION")

	for _, span := range w.spans {
		_, err := w.statement.Exec(
			span.ID,
			span.Kind,
			span.What,
			span.Where,
			timeToSeconds(span.Start),
			timeToSeconds(span.End),
		)
		if err != nil {
			panic(err)
		}
	}

	w.spans = nil
}

func (w *SQLiteWriter) createDatabase() {
	if w.dbName == "" {
		w.dbName = "inemuri_trace_" + xid.New().String()
	}

	filename := w.dbName + ".sqlite3"
	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Transition trace collected in: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	w.DB = db
}

func (w *SQLiteWriter) createTable() {
	w.mustExecute(`
		CREATE TABLE spans (
			id TEXT,
			kind TEXT,
			what TEXT,
			location TEXT,
			start_time REAL,
			end_time REAL
		)
	`)
	w.mustExecute("CREATE INDEX spans_what ON spans (what)")
	w.mustExecute("CREATE INDEX spans_start_time ON spans (start_time)")
}

func (w *SQLiteWriter) prepareStatement() {
	stmt, err := w.Prepare(`
		INSERT INTO spans (id, kind, what, location, start_time, end_time)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		panic(err)
	}

	w.statement = stmt
}

func (w *SQLiteWriter) mustExecute(query string) sql.Result {
	res, err := w.Exec(query)
	if err != nil {
		panic(err)
	}

	return res
}
