// Package dataset reads the movie CSV file into raw rows for the record
// store. It only splits and labels columns; coercion happens in store.Load.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	domainerrors "github.com/listenupapp/moviescope/internal/errors"
	"github.com/listenupapp/moviescope/internal/store"
)

// Column names looked up in the header row (case-insensitive). Other
// columns of the file are ignored.
const (
	ColName     = "name"
	ColGenre    = "genre"
	ColYear     = "year"
	ColScore    = "score"
	ColVotes    = "votes"
	ColGross    = "gross"
	ColDirector = "director"
)

var requiredColumns = []string{ColName, ColGenre, ColYear, ColVotes, ColGross}

// LoadCSV reads the dataset file at path.
func LoadCSV(path string) ([]store.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return rows, nil
}

// Read parses CSV from r. The first record is the header. Line numbers in
// the returned rows are 1-based file lines, so the first data row is line 2.
func Read(r io.Reader) ([]store.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, domainerrors.MalformedRecordf("dataset header is missing columns: %s", strings.Join(missing, ", ")).
			WithDetails(map[string][]string{"missing": missing})
	}

	var rows []store.RawRow
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		line, _ := cr.FieldPos(0)

		get := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		rows = append(rows, store.RawRow{
			Line:     line,
			Name:     get(ColName),
			Genre:    get(ColGenre),
			Year:     get(ColYear),
			Score:    get(ColScore),
			Votes:    get(ColVotes),
			Gross:    get(ColGross),
			Director: get(ColDirector),
		})
	}
	return rows, nil
}
