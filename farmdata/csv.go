package farmdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// LoadCSV reads a farm export in CSV format.
func LoadCSV(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return ReadCSV(file, path)
}

// ReadCSV reads CSV content whose first row is the header.
func ReadCSV(r io.Reader, source string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &Dataset{Source: source}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", source, err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}

	return buildDataset(source, header, rows, ParseDate), nil
}
