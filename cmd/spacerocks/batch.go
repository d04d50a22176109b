package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/kjnapes/spacerocks/internal/types"
)

// BatchFile lists the jobs of a batch run
type BatchFile struct {
	Jobs []Job `yaml:"jobs"`
}

var batchCmd = &cobra.Command{
	Use:   "batch [jobs-file]",
	Short: "Run several integrations concurrently",
	Long: `
Run every job of a YAML jobs file, at most resources.max_concurrent at a time.
Each job has its own simulation; the ephemeris provider, its cache and the
metrics are shared. Jobs only write snapshots or final states when they name
the files themselves, and no two jobs may name the same file.

  jobs:
    - name: giants-century
      preset: giants
      epoch: "2451545 tdb"
      target: "2488070 tdb"
      snapshot_file: giants.jsonl
    - name: sedna
      preset: giants
      bodies: [Sedna]
      epoch: "2451545 tdb"
      target: "2455197.5 tdb"
      state_out: sedna.yaml
`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().String("report", "", "Write the reports here instead of stdout")
	batchCmd.Flags().Bool("fail-fast", false, "Cancel remaining jobs after the first failure")
}

func loadJobs(path string) ([]Job, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var bf BatchFile
	if err := yaml.Unmarshal(raw, &bf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(bf.Jobs) == 0 {
		return nil, fmt.Errorf("%s has no jobs", path)
	}

	outputs := make(map[string]string)
	for i := range bf.Jobs {
		job := &bf.Jobs[i]
		if job.Name == "" {
			job.Name = fmt.Sprintf("job-%d", i+1)
		}
		for _, path := range []string{job.SnapshotFile, job.StateOut} {
			if path == "" {
				continue
			}
			if other, ok := outputs[path]; ok {
				return nil, fmt.Errorf("jobs %s and %s both write %s", other, job.Name, path)
			}
			outputs[path] = job.Name
		}
	}
	return bf.Jobs, nil
}

// runJobs runs jobs on r with at most limit in flight. Reports come back in
// job order. Without failFast a failed job does not stop the others.
func runJobs(ctx context.Context, r *runner, jobs []Job, limit int, failFast bool) ([]types.IntegrationReport, error) {
	reports := make([]types.IntegrationReport, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	failed := make([]bool, len(jobs))
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				reports[i] = types.IntegrationReport{Name: job.Name, Error: err.Error()}
				failed[i] = true
				return nil
			}
			report, err := r.run(gctx, job)
			reports[i] = report
			if err != nil {
				failed[i] = true
				r.logger.Error("job failed", "job", job.Name, "err", err)
				if failFast {
					return fmt.Errorf("job %s: %w", job.Name, err)
				}
			}
			return nil
		})
	}
	err := g.Wait()

	n := 0
	for _, f := range failed {
		if f {
			n++
		}
	}
	if err == nil && n > 0 {
		err = fmt.Errorf("%d of %d jobs failed", n, len(jobs))
	}
	return reports, err
}

func runBatch(cmd *cobra.Command, args []string) error {
	reportPath, _ := cmd.Flags().GetString("report")
	failFast, _ := cmd.Flags().GetBool("fail-fast")

	jobs, err := loadJobs(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r, err := newRunner(config, logger)
	if err != nil {
		return err
	}
	serveMetrics(ctx, r)

	logger.Info("running batch", "jobs", len(jobs), "max_concurrent", config.Resources.MaxConcurrent)
	reports, err := runJobs(ctx, r, jobs, config.Resources.MaxConcurrent, failFast)
	if werr := writeYAML(reportPath, reports); werr != nil && err == nil {
		err = werr
	}
	return err
}
