package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hindsightlab/hindsight/internal/core"
)

// Column layout: time,close[,signal]. The signal column is optional; rows
// without one are loaded as hold and are expected to be annotated by a rule
// before simulation.
var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// LoadCSV reads a price series from a CSV file and validates it.
func LoadCSV(path string) ([]core.PricePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening series file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a price series from CSV data.
func Read(r io.Reader) ([]core.PricePoint, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, core.ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var points []core.PricePoint
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		p, err := parsePoint(record, cols)
		if err != nil {
			return nil, core.WrapError(core.ErrInvalidSeries, fmt.Errorf("line %d: %w", line, err))
		}
		points = append(points, p)
	}

	if len(points) == 0 {
		return nil, core.ErrNoData
	}
	if err := core.ValidateSeries(points); err != nil {
		return nil, err
	}
	return points, nil
}

type columns struct {
	time   int
	close  int
	signal int // -1 when absent
}

func mapColumns(header []string) (columns, error) {
	cols := columns{time: -1, close: -1, signal: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "time", "date", "timestamp":
			cols.time = i
		case "close", "price":
			cols.close = i
		case "signal":
			cols.signal = i
		}
	}
	if cols.time < 0 || cols.close < 0 {
		return cols, core.WrapError(core.ErrInvalidSeries,
			fmt.Errorf("header must contain time and close columns, got %v", header))
	}
	return cols, nil
}

func parsePoint(record []string, cols columns) (core.PricePoint, error) {
	var p core.PricePoint

	if cols.time >= len(record) || cols.close >= len(record) {
		return p, fmt.Errorf("short record: %v", record)
	}

	ts, err := parseTime(record[cols.time])
	if err != nil {
		return p, err
	}
	p.Time = ts

	p.Close, err = strconv.ParseFloat(strings.TrimSpace(record[cols.close]), 64)
	if err != nil {
		return p, fmt.Errorf("close %q: %w", record[cols.close], err)
	}

	if cols.signal >= 0 && cols.signal < len(record) {
		raw := strings.TrimSpace(record[cols.signal])
		if raw != "" {
			sig, err := strconv.Atoi(raw)
			if err != nil {
				return p, fmt.Errorf("signal %q: %w", raw, err)
			}
			p.Signal = core.Signal(sig)
		}
	}

	return p, nil
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
