package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/prfit/internal/batch"
	"github.com/san-kum/prfit/internal/config"
	"github.com/san-kum/prfit/internal/fit"
	"github.com/san-kum/prfit/internal/model"
	"github.com/san-kum/prfit/internal/stimulus"
	"github.com/san-kum/prfit/internal/storage"
	"github.com/san-kum/prfit/internal/tui"
	"github.com/san-kum/prfit/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	units      int
	noise      float64
	seed       int64
	outFile    string
	workers    int
	live       bool
	unitIdx    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "prfit",
		Short: "population receptive field fitting",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".prfit", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "prfit.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "synthesize ground-truth responses from a sweeping-bar stimulus",
		RunE:  runSimulate,
	}
	simulateCmd.Flags().IntVar(&units, "units", 20, "number of simulated units")
	simulateCmd.Flags().Float64Var(&noise, "noise", 0.1, "gaussian noise sigma on z-scored responses")
	simulateCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	simulateCmd.Flags().StringVar(&outFile, "out", "responses.csv", "output responses file")

	fitCmd := &cobra.Command{
		Use:   "fit [responses.csv]",
		Short: "fit a receptive field model to every response",
		Args:  cobra.ExactArgs(1),
		RunE:  runFit,
	}
	fitCmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = all cores)")
	fitCmd.Flags().BoolVar(&live, "live", false, "show live progress")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list fit runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show per-unit estimates for a run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot one unit's observed and predicted response",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&unitIdx, "unit", 0, "unit index")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		},
	}

	rootCmd.AddCommand(initCmd, simulateCmd, fitCmd, listCmd, showCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(configFile)
}

func buildStimulus(cfg *config.Config) (*stimulus.Stimulus, error) {
	return stimulus.SimulateBar(stimulus.BarConfig{
		PixelsAcross:    cfg.Stimulus.PixelsAcross,
		PixelsDown:      cfg.Stimulus.PixelsDown,
		ViewingDistance: cfg.Stimulus.ViewingDistance,
		ScreenWidth:     cfg.Stimulus.ScreenWidth,
		FrameRate:       cfg.Stimulus.FrameRate,
		Thetas:          cfg.Stimulus.Thetas,
		BarSteps:        cfg.Stimulus.BarSteps,
		BlankSteps:      cfg.Stimulus.BlankSteps,
		Eccentricity:    cfg.Stimulus.Eccentricity,
		BarWidth:        cfg.Stimulus.BarWidth,
	})
}

func buildModel(cfg *config.Config, stim *stimulus.Stimulus) (model.Model, error) {
	switch cfg.Model {
	case "spatiotemporal":
		return model.NewSpatioTemporal(stim, cfg.SampleRate)
	default:
		return model.NewPopulation(stim, cfg.SampleRate)
	}
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	stim, err := buildStimulus(cfg)
	if err != nil {
		return err
	}
	m, err := buildModel(cfg, stim)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(seed))
	bounds := m.Bounds()

	fmt.Printf("simulating %d units (%s model, %d frames)...\n", units, cfg.Model, stim.Frames())

	responses := make([][]float64, units)
	truth := make([][]float64, units)
	for u := 0; u < units; u++ {
		params := make([]float64, len(bounds))
		for i, b := range bounds {
			// Draw from the middle half of each bound so truths stay well
			// inside the search region.
			span := b.Max - b.Min
			params[i] = b.Min + span/4 + rng.Float64()*span/2
		}

		pred, err := m.Predict(params)
		if err != nil {
			return fmt.Errorf("unit %d: %w", u, err)
		}
		for i := range pred {
			pred[i] += rng.NormFloat64() * noise
		}
		responses[u] = pred
		truth[u] = params
	}

	if err := storage.WriteSeriesCSV(outFile, responses); err != nil {
		return err
	}
	truthFile := truthPath(outFile)
	if err := storage.WriteSeriesCSV(truthFile, truth); err != nil {
		return err
	}

	fmt.Printf("wrote %s and %s\n", outFile, truthFile)
	return nil
}

func truthPath(responses string) string {
	ext := filepath.Ext(responses)
	return responses[:len(responses)-len(ext)] + "_truth" + ext
}

func runFit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	responses, err := storage.ReadSeriesCSV(args[0])
	if err != nil {
		return err
	}
	if len(responses) == 0 {
		return fmt.Errorf("no responses in %s", args[0])
	}

	stim, err := buildStimulus(cfg)
	if err != nil {
		return err
	}
	m, err := buildModel(cfg, stim)
	if err != nil {
		return err
	}

	opts := fit.Options{
		GridPoints:    cfg.Search.GridPoints,
		GridRounds:    cfg.Search.GridRounds,
		Tolerance:     cfg.Search.Tolerance,
		MaxIterations: cfg.Search.MaxIterations,
	}
	runner := batch.New(m, opts)
	if workers > 0 {
		runner.SetWorkers(workers)
	} else if cfg.Workers > 0 {
		runner.SetWorkers(cfg.Workers)
	}

	if cfg.Stimulus.CoarseFactor > 1 {
		coarseStim, err := stimulus.Downsample(stim, cfg.Stimulus.CoarseFactor)
		if err != nil {
			return err
		}
		coarse, err := buildModel(cfg, coarseStim)
		if err != nil {
			return err
		}
		runner.SetCoarseModel(coarse)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	start := time.Now()
	var results []batch.Result
	if live {
		results, err = runLive(cmd.Context(), runner, responses, cfg.Model, start)
	} else {
		fmt.Printf("fitting %d units (%s model)...\n", len(responses), cfg.Model)
		runner.OnProgress(func(p batch.Progress) {
			status := fmt.Sprintf("r2=%.4f", p.RSquared)
			if p.Err != nil {
				status = "failed"
			}
			fmt.Printf("  [%d/%d] unit %d %s\n", p.Done, p.Total, p.Unit, status)
		})
		results, err = runner.Run(cmd.Context(), responses)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.SaveRun(cfg.Model, cfg.SampleRate, elapsed, results)
	if err != nil {
		return err
	}

	printSummary(runID, elapsed, results)
	return nil
}

func runLive(ctx context.Context, runner *batch.Runner, responses [][]float64, modelName string, start time.Time) ([]batch.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(tui.NewModel("prfit "+modelName, len(responses)))
	runner.OnProgress(func(pr batch.Progress) {
		p.Send(tui.ProgressMsg{
			Unit:     pr.Unit,
			Done:     pr.Done,
			Total:    pr.Total,
			RSquared: pr.RSquared,
			Err:      pr.Err,
		})
	})

	type outcome struct {
		results []batch.Result
		err     error
	}
	resCh := make(chan outcome, 1)
	go func() {
		results, err := runner.Run(ctx, responses)
		resCh <- outcome{results, err}
		p.Send(tui.DoneMsg{Elapsed: time.Since(start)})
	}()

	if _, err := p.Run(); err != nil {
		return nil, err
	}
	cancel() // user may have quit before the batch finished

	out := <-resCh
	return out.results, out.err
}

func printSummary(runID string, elapsed time.Duration, results []batch.Result) {
	var converged, failed int
	var r2sum float64
	var fitted int
	best := -1
	for i, res := range results {
		if res.Estimate == nil {
			failed++
			continue
		}
		fitted++
		r2sum += res.RSquared
		if res.Estimate.Converged {
			converged++
		}
		if best < 0 || res.RSquared > results[best].RSquared {
			best = i
		}
	}

	fmt.Printf("\nrun id: %s\n", runID)
	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("units: %d  converged: %d  failed: %d\n", len(results), converged, failed)
	if fitted > 0 {
		fmt.Printf("mean r2: %.4f\n", r2sum/float64(fitted))
	}

	if best >= 0 {
		res := results[best]
		fmt.Println()
		fmt.Println(viz.UnitSummary(res.Unit, res.Estimate.Params, res.RSquared,
			res.Beta.Slope, res.Beta.Intercept, res.Estimate.Converged))
		fmt.Println()
		fmt.Println(viz.FitPlot(res.Observed, res.Predicted,
			fmt.Sprintf("best unit (%d)", res.Unit)))
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tUNITS\tCONVERGED\tFAILED\tMEAN_R2")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.4f\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Units,
			run.Converged,
			run.Failed,
			run.MeanRSquared,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	rows, err := st.LoadEstimates(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "UNIT\tX\tY\tSIGMA\tTAU\tR2\tBETA\tCONVERGED\tERROR")
	for _, row := range rows {
		if row.Err != "" {
			fmt.Fprintf(w, "%d\t\t\t\t\t\t\t\t%s\n", row.Unit, row.Err)
			continue
		}
		fmt.Fprintf(w, "%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.4f\t%.3f\t%t\t\n",
			row.Unit, row.X, row.Y, row.Sigma, row.Tau,
			row.RSquared, row.BetaSlope, row.Converged)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	observed, err := st.LoadSeries(runID, "responses.csv")
	if err != nil {
		return err
	}
	predicted, err := st.LoadSeries(runID, "predictions.csv")
	if err != nil {
		return err
	}
	if unitIdx < 0 || unitIdx >= len(observed) {
		return fmt.Errorf("unit %d out of range (run has %d units)", unitIdx, len(observed))
	}
	if observed[unitIdx] == nil || predicted[unitIdx] == nil {
		return fmt.Errorf("unit %d has no fitted series", unitIdx)
	}

	fmt.Println(viz.FitPlot(observed[unitIdx], predicted[unitIdx],
		fmt.Sprintf("unit %d", unitIdx)))
	fmt.Println()

	residual := make([]float64, len(observed[unitIdx]))
	for i := range residual {
		residual[i] = observed[unitIdx][i] - predicted[unitIdx][i]
	}
	fmt.Println(viz.ResidualPlot(residual))
	return nil
}
