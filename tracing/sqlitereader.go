package tracing

import (
	"database/sql"
	"fmt"
	"strings"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
)

// SpanQuery defines the spans to be queried. Not all the fields have to be
// set. If a field is empty, the criterion is ignored.
type SpanQuery struct {
	// Use ID to select a single span by its ID.
	ID string

	// Use Kind to select all the spans of a kind.
	Kind string

	// Use What to select all the spans of one transition direction.
	What string

	// Use Where to select all the spans produced at a location.
	Where string
}

// SQLiteReader reads spans back from a database written by a SQLiteWriter.
type SQLiteReader struct {
	*sql.DB

	filename string
}

// NewSQLiteReader creates a reader for the given database file.
func NewSQLiteReader(filename string) *SQLiteReader {
	return &SQLiteReader{filename: filename}
}

// Init establishes a connection to the database.
func (r *SQLiteReader) Init() error {
	db, err := sql.Open("sqlite3", r.filename)
	if err != nil {
		return fmt.Errorf("tracing: open %s: %w", r.filename, err)
	}

	r.DB = db

	return nil
}

// A LocationCount is the number of spans recorded at one location.
type LocationCount struct {
	Where string
	Count int
}

// ListLocations returns the locations present in the store, with the number
// of spans recorded at each.
func (r *SQLiteReader) ListLocations() ([]LocationCount, error) {
	rows, err := r.Query(`
		SELECT location, COUNT(*) FROM spans
		GROUP BY location ORDER BY location
	`)
	if err != nil {
		return nil, fmt.Errorf("tracing: query locations: %w", err)
	}
	defer rows.Close()

	var locations []LocationCount
	for rows.Next() {
		var l LocationCount

		err := rows.Scan(&l.Where, &l.Count)
		if err != nil {
			return nil, fmt.Errorf("tracing: scan location: %w", err)
		}

		locations = append(locations, l)
	}

	return locations, rows.Err()
}

// ListSpans returns the spans that match the query, ordered by start time.
func (r *SQLiteReader) ListSpans(query SpanQuery) ([]Span, error) {
	stmt := "SELECT id, kind, what, location, start_time, end_time FROM spans"

	var conds []string
	var args []any
	if query.ID != "" {
		conds = append(conds, "id = ?")
		args = append(args, query.ID)
	}
	if query.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, query.Kind)
	}
	if query.What != "" {
		conds = append(conds, "what = ?")
		args = append(args, query.What)
	}
	if query.Where != "" {
		conds = append(conds, "location = ?")
		args = append(args, query.Where)
	}

	if len(conds) > 0 {
		stmt += " WHERE " + strings.Join(conds, " AND ")
	}
	stmt += " ORDER BY start_time"

	rows, err := r.Query(stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("tracing: query spans: %w", err)
	}
	defer rows.Close()

	var spans []Span
	for rows.Next() {
		var s Span
		var start, end float64

		err := rows.Scan(&s.ID, &s.Kind, &s.What, &s.Where, &start, &end)
		if err != nil {
			return nil, fmt.Errorf("tracing: scan span: %w", err)
		}

		s.Start = secondsToTime(start)
		s.End = secondsToTime(end)
		spans = append(spans, s)
	}

	return spans, rows.Err()
}
