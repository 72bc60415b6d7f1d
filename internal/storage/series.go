package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// WriteSeriesCSV writes one timeseries per row, the first field carrying the
// unit index. Units without a series (nil rows) keep their index line so
// alignment survives the round trip.
func WriteSeriesCSV(path string, series [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	for unit, row := range series {
		rec := make([]string, len(row)+1)
		rec[0] = strconv.Itoa(unit)
		for i, v := range row {
			rec[i+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Error()
}

// ReadSeriesCSV reads timeseries written by WriteSeriesCSV, returning a slice
// indexed by unit. Units recorded without samples come back nil.
func ReadSeriesCSV(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	maxUnit := -1
	parsed := make(map[int][]float64, len(records))
	for i, rec := range records {
		unit, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("storage: row %d: bad unit index: %w", i, err)
		}
		if unit > maxUnit {
			maxUnit = unit
		}
		if len(rec) == 1 {
			continue
		}
		row := make([]float64, len(rec)-1)
		for j, field := range rec[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: row %d field %d: %w", i, j, err)
			}
			row[j] = v
		}
		parsed[unit] = row
	}

	series := make([][]float64, maxUnit+1)
	for unit, row := range parsed {
		series[unit] = row
	}
	return series, nil
}
