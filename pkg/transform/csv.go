package transform

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// csvHeader is the fixed column order of character CSV files.
var csvHeader = []string{"id", "name", "img", "comics"}

// WriteCSV writes rows as CSV with a header line.
func WriteCSV(w io.Writer, rows []CharacterRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.ID),
			row.Name,
			row.Img,
			strconv.Itoa(row.Comics),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", row.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes rows to a CSV file, creating parent directories as
// needed.
func WriteCSVFile(path string, rows []CharacterRow) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}

	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// ReadCSV reads character rows from CSV written by WriteCSV.
func ReadCSV(r io.Reader) ([]CharacterRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, col := range csvHeader {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected csv header %v, want %v", header, csvHeader)
		}
	}

	var rows []CharacterRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		id, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("parse id %q: %w", record[0], err)
		}
		comics, err := strconv.Atoi(record[3])
		if err != nil {
			return nil, fmt.Errorf("parse comics %q: %w", record[3], err)
		}

		rows = append(rows, CharacterRow{
			ID:     id,
			Name:   record[1],
			Img:    record[2],
			Comics: comics,
		})
	}

	return rows, nil
}

// ReadCSVFile reads character rows from a CSV file.
func ReadCSVFile(path string) ([]CharacterRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}
