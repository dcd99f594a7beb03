package roster

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"markerid/internal/fileutil"
)

// DefaultClaimColumn is the claim column name used when none is configured.
const DefaultClaimColumn = "Fuzziness"

// ErrEmptyRoster indicates a roster source without a header row.
var ErrEmptyRoster = errors.New("roster has no header row")

// Record is one reference entry. Index is stable for the life of the roster.
type Record struct {
	Index  int
	Values map[string]string
	Claim  float64
}

// Value returns the trimmed value of column, or "" when absent.
func (r *Record) Value(column string) string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.Values[column])
}

// Roster is an ordered collection of records sharing one header. It performs
// no locking; the match engine owns it for the life of the process.
type Roster struct {
	header      []string
	columns     map[string]struct{}
	claimColumn string
	records     []*Record
}

// Load reads a roster CSV from path.
func Load(path, claimColumn string) (*Roster, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer file.Close()

	r, err := Read(file, claimColumn)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}
	return r, nil
}

// Read parses a roster from CSV. Claim values that do not parse as a
// non-negative number are treated as 0.
func Read(src io.Reader, claimColumn string) (*Roster, error) {
	claimColumn = strings.TrimSpace(claimColumn)
	if claimColumn == "" {
		claimColumn = DefaultClaimColumn
	}

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyRoster
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	r := &Roster{
		header:      header,
		columns:     make(map[string]struct{}, len(header)+1),
		claimColumn: claimColumn,
	}
	for _, col := range header {
		if col == "" {
			continue
		}
		if _, dup := r.columns[col]; dup {
			return nil, fmt.Errorf("duplicate column %q", col)
		}
		r.columns[col] = struct{}{}
	}
	if _, ok := r.columns[claimColumn]; !ok {
		r.header = append(r.header, claimColumn)
		r.columns[claimColumn] = struct{}{}
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(r.records)+2, err)
		}
		rec := &Record{Index: len(r.records), Values: make(map[string]string, len(header))}
		for i, col := range header {
			if col == "" || i >= len(row) {
				continue
			}
			if col == claimColumn {
				rec.Claim = parseClaim(row[i])
				continue
			}
			rec.Values[col] = row[i]
		}
		r.records = append(r.records, rec)
	}
	return r, nil
}

func parseClaim(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

// FormatClaim renders a claim score the way it is stored in the roster.
func FormatClaim(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// Write serializes the roster as CSV, preserving the original column order.
func (r *Roster) Write(dst io.Writer) error {
	writer := csv.NewWriter(dst)
	if err := writer.Write(r.header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(r.header))
	for _, rec := range r.records {
		for i, col := range r.header {
			if col == r.claimColumn {
				row[i] = FormatClaim(rec.Claim)
				continue
			}
			row[i] = rec.Values[col]
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", rec.Index, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Save writes the roster to path atomically.
func (r *Roster) Save(path string) error {
	var buf bytes.Buffer
	if err := r.Write(&buf); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save roster: %w", err)
	}
	return nil
}

// Columns returns the header, including the claim column.
func (r *Roster) Columns() []string {
	out := make([]string, len(r.header))
	copy(out, r.header)
	return out
}

// HasColumn reports whether column is part of the header.
func (r *Roster) HasColumn(column string) bool {
	_, ok := r.columns[column]
	return ok
}

// ClaimColumn returns the name of the claim score column.
func (r *Roster) ClaimColumn() string {
	return r.claimColumn
}

// Len returns the number of records.
func (r *Roster) Len() int {
	return len(r.records)
}

// Record returns the record at index, or nil when out of range.
func (r *Roster) Record(index int) *Record {
	if index < 0 || index >= len(r.records) {
		return nil
	}
	return r.records[index]
}

// Records returns the records in index order. The slice is shared; callers
// must not mutate claims outside the match engine.
func (r *Roster) Records() []*Record {
	return r.records
}
