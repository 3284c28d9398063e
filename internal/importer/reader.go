package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Format is the encoding of a fixture file
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported fixture format %q", filepath.Ext(path))
	}
}

// ReadIngredients decodes ingredient records. CSV rows are name,measurement_unit with an
// optional header row.
func ReadIngredients(r io.Reader, format Format) ([]IngredientRecord, error) {
	var records []IngredientRecord
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, fmt.Errorf("failed to decode ingredients: %w", err)
		}
	case FormatCSV:
		rows, err := readCSV(r, 2, "name")
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			records = append(records, IngredientRecord{Name: row[0], MeasurementUnit: row[1]})
		}
	default:
		return nil, fmt.Errorf("unsupported fixture format %q", format)
	}

	for i := range records {
		records[i].normalize()
		if err := validateRecord(&records[i]); err != nil {
			return nil, fmt.Errorf("ingredient record %d: %w", i+1, err)
		}
	}
	return records, nil
}

// ReadTags decodes tag records. CSV rows are name,color,slug with an optional header row.
func ReadTags(r io.Reader, format Format) ([]TagRecord, error) {
	var records []TagRecord
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	case FormatCSV:
		rows, err := readCSV(r, 3, "name")
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			records = append(records, TagRecord{Name: row[0], Color: row[1], Slug: row[2]})
		}
	default:
		return nil, fmt.Errorf("unsupported fixture format %q", format)
	}

	for i := range records {
		records[i].normalize()
		if err := validateRecord(&records[i]); err != nil {
			return nil, fmt.Errorf("tag record %d: %w", i+1, err)
		}
	}
	return records, nil
}

// readCSV returns rows with exactly columns fields, skipping a header whose first cell
// is header.
func readCSV(r io.Reader, columns int, header string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = columns
	reader.TrimLeadingSpace = true

	var rows [][]string
	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), header) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
