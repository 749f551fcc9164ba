package timeseries

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestWriteCSV(t *testing.T) {
	ts := []time.Time{
		time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC),
	}
	series, err := NewWithTimestamps(ts, []float64{100, 120.5})
	if err != nil {
		t.Fatalf("NewWithTimestamps failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, series); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	expected := "ds,y\n2023-01-01,100\n2023-02-01,120.5\n"
	if buf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buf.String())
	}
}

func TestWriteCSVWithoutTimestamps(t *testing.T) {
	series := &Series{Values: []float64{1, 2, 3}}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, series); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 lines, got %d", len(lines))
	}
	if lines[3] != "3,3" {
		t.Errorf("Expected index fallback '3,3', got %q", lines[3])
	}
}
