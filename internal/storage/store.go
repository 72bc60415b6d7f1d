package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/prfit/internal/batch"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string    `json:"id"`
	Model        string    `json:"model"`
	Timestamp    time.Time `json:"timestamp"`
	SampleRate   float64   `json:"sample_rate"`
	Units        int       `json:"units"`
	Converged    int       `json:"converged"`
	Failed       int       `json:"failed"`
	MeanRSquared float64   `json:"mean_r_squared"`
	ElapsedSec   float64   `json:"elapsed_sec"`
}

// EstimateRow is one unit's line in estimates.csv. Tau is the fourth model
// parameter: the hemodynamic delay for the population variant, the temporal
// dispersion for the spatiotemporal one.
type EstimateRow struct {
	Unit          int
	X             float64
	Y             float64
	Sigma         float64
	Tau           float64
	SSE           float64
	RSquared      float64
	BetaSlope     float64
	BetaIntercept float64
	Converged     bool
	Err           string
}

// SaveRun writes one batch's results under a fresh run directory:
// metadata.json, estimates.csv, and the observed/predicted series for later
// inspection.
func (s *Store) SaveRun(modelName string, sampleRate float64, elapsed time.Duration, results []batch.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", modelName, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Model:      modelName,
		Timestamp:  time.Now(),
		SampleRate: sampleRate,
		Units:      len(results),
		ElapsedSec: elapsed.Seconds(),
	}
	var r2sum float64
	var fitted int
	for _, res := range results {
		if res.Estimate == nil {
			meta.Failed++
			continue
		}
		fitted++
		r2sum += res.RSquared
		if res.Estimate.Converged {
			meta.Converged++
		}
	}
	if fitted > 0 {
		meta.MeanRSquared = r2sum / float64(fitted)
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeEstimates(filepath.Join(runDir, "estimates.csv"), results); err != nil {
		return "", err
	}

	observed := make([][]float64, len(results))
	predicted := make([][]float64, len(results))
	for i, res := range results {
		observed[i] = res.Observed
		predicted[i] = res.Predicted
	}
	if err := WriteSeriesCSV(filepath.Join(runDir, "responses.csv"), observed); err != nil {
		return "", err
	}
	if err := WriteSeriesCSV(filepath.Join(runDir, "predictions.csv"), predicted); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Load(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) LoadEstimates(runID string) ([]EstimateRow, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "estimates.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("storage: empty estimates file")
	}

	rows := make([]EstimateRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != 11 {
			return nil, fmt.Errorf("storage: estimate row %d has %d fields, expected 11", i, len(rec))
		}
		var row EstimateRow
		unit, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("storage: estimate row %d: bad unit index: %w", i, err)
		}
		row.Unit = unit
		row.Err = rec[10]

		// Failed units are written with empty numeric fields.
		numeric := []*float64{&row.X, &row.Y, &row.Sigma, &row.Tau,
			&row.SSE, &row.RSquared, &row.BetaSlope, &row.BetaIntercept}
		for j, dst := range numeric {
			if rec[j+1] == "" {
				continue
			}
			v, err := strconv.ParseFloat(rec[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("storage: estimate row %d field %d: %w", i, j+1, err)
			}
			*dst = v
		}
		if rec[9] != "" {
			v, err := strconv.ParseBool(rec[9])
			if err != nil {
				return nil, fmt.Errorf("storage: estimate row %d: bad converged flag: %w", i, err)
			}
			row.Converged = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadSeries reads responses.csv or predictions.csv from a run directory.
func (s *Store) LoadSeries(runID, name string) ([][]float64, error) {
	return ReadSeriesCSV(filepath.Join(s.baseDir, runID, name))
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeEstimates(path string, results []batch.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"unit", "x", "y", "sigma", "tau", "sse", "r_squared", "beta_slope", "beta_intercept", "converged", "error"}
	if err := w.Write(header); err != nil {
		return err
	}

	ff := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, res := range results {
		rec := make([]string, len(header))
		rec[0] = strconv.Itoa(res.Unit)
		if res.Estimate != nil && len(res.Estimate.Params) == 4 {
			rec[1] = ff(res.Estimate.Params[0])
			rec[2] = ff(res.Estimate.Params[1])
			rec[3] = ff(res.Estimate.Params[2])
			rec[4] = ff(res.Estimate.Params[3])
			rec[5] = ff(res.Estimate.SSE)
			rec[6] = ff(res.RSquared)
			rec[7] = ff(res.Beta.Slope)
			rec[8] = ff(res.Beta.Intercept)
			rec[9] = strconv.FormatBool(res.Estimate.Converged)
		}
		if res.Err != nil {
			rec[10] = res.Err.Error()
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Error()
}
