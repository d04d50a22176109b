package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"cosmossdk.io/log"
	"gopkg.in/yaml.v3"

	"github.com/kjnapes/spacerocks/internal/types"
	"github.com/kjnapes/spacerocks/pkg/analysis"
	"github.com/kjnapes/spacerocks/pkg/astronomy/astrotime"
	"github.com/kjnapes/spacerocks/pkg/astronomy/coordinates"
	"github.com/kjnapes/spacerocks/pkg/astronomy/nbody"
	"github.com/kjnapes/spacerocks/pkg/ephemeris"
	"github.com/kjnapes/spacerocks/pkg/telemetry"
	"github.com/kjnapes/spacerocks/pkg/utils"
)

// Job describes one integration run
type Job struct {
	Name         string   `yaml:"name"`
	Preset       string   `yaml:"preset"`
	Bodies       []string `yaml:"bodies"`
	Epoch        string   `yaml:"epoch"`
	Target       string   `yaml:"target"`
	SnapshotFile string   `yaml:"snapshot_file"`
	StateOut     string   `yaml:"state_out"`
}

// runner holds what every job of one invocation shares: the provider stack
// and the metrics collector. It is safe for concurrent jobs.
type runner struct {
	cfg      *utils.Config
	logger   log.Logger
	metrics  *telemetry.MetricsCollector
	provider nbody.EphemerisProvider
	file     *ephemeris.FileProvider
}

func newRunner(cfg *utils.Config, logger log.Logger) (*runner, error) {
	r := &runner{
		cfg:     cfg,
		logger:  logger,
		metrics: telemetry.NewMetricsCollector(),
	}

	if cfg.IsFileProvider() {
		fp, err := ephemeris.NewFileProvider(cfg.Ephemeris.StateFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load state file: %w", err)
		}
		fp.Observer = r.metrics
		r.file = fp
		r.provider = fp
	} else {
		hc := ephemeris.NewHorizonsClient(ephemeris.HorizonsConfig{
			URL:               cfg.Ephemeris.HorizonsURL,
			RequestsPerSecond: cfg.Ephemeris.RequestsPerSecond,
			RetryMax:          cfg.Ephemeris.RetryMax,
			Timeout:           cfg.Ephemeris.Timeout,
		}, logger.With("module", "horizons"))
		hc.Observer = r.metrics
		r.provider = hc
	}

	if cfg.Ephemeris.CacheSize > 0 {
		cp, err := ephemeris.NewCachedProvider(r.provider, cfg.Ephemeris.CacheSize)
		if err != nil {
			return nil, err
		}
		cp.Observer = r.metrics
		r.provider = cp
	}
	return r, nil
}

func (r *runner) resolveEpoch(s string) (astrotime.Time, error) {
	if s == "" {
		if r.file != nil {
			if epoch, ok := r.file.Epoch(); ok {
				return epoch, nil
			}
		}
		return astrotime.Now(), nil
	}
	return astrotime.Parse(s)
}

// bodyNames lists the bodies a job adds on top of its preset. A job with
// neither on a state file takes every body in the file.
func (r *runner) bodyNames(job Job) []string {
	if job.Preset == "" && len(job.Bodies) == 0 && r.file != nil {
		names := r.file.Names()
		sort.Strings(names)
		return names
	}
	return job.Bodies
}

func (r *runner) buildSimulation(ctx context.Context, job Job, epoch astrotime.Time) (*nbody.Simulation, error) {
	plane, err := coordinates.ParseReferencePlane(r.cfg.Simulation.ReferencePlane)
	if err != nil {
		return nil, err
	}
	origin, err := coordinates.ParseOrigin(r.cfg.Simulation.Origin)
	if err != nil {
		return nil, err
	}

	var sim *nbody.Simulation
	switch strings.ToLower(job.Preset) {
	case "giants":
		sim, err = nbody.Giants(ctx, r.provider, epoch, plane, origin)
	case "planets":
		sim, err = nbody.Planets(ctx, r.provider, epoch, plane, origin)
	case "horizons":
		sim, err = nbody.Horizons(ctx, r.provider, epoch, plane, origin)
	case "", "none":
		sim, err = nbody.FromProvider(ctx, r.provider, nil, epoch, plane, origin)
	default:
		return nil, fmt.Errorf("unknown preset: %s", job.Preset)
	}
	if err != nil {
		return nil, err
	}

	for _, name := range r.bodyNames(job) {
		if _, ok := sim.Index(name); ok {
			continue
		}
		body, err := r.provider.BodyFromService(ctx, name, epoch, plane, origin)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", name, err)
		}
		if err := sim.Add(body); err != nil {
			return nil, err
		}
	}
	if sim.Len() == 0 {
		return nil, fmt.Errorf("job %s has no bodies", job.Name)
	}

	jobLogger := r.logger.With("job", job.Name)
	integrator, err := nbody.NewIntegrator(r.cfg.Simulation.Integrator, r.cfg.Simulation.Timestep)
	if err != nil {
		return nil, err
	}
	if ias, ok := integrator.(*nbody.IAS15); ok {
		ias.Epsilon = r.cfg.Simulation.Epsilon
		ias.MaxRetries = r.cfg.Simulation.MaxRetries
		ias.Logger = jobLogger
	}
	sim.SetIntegrator(integrator)

	sim.Forces = nil
	for _, name := range r.cfg.Simulation.Forces {
		f, err := nbody.NewForce(name, r.cfg.Simulation.CentralBody)
		if err != nil {
			return nil, err
		}
		sim.AddForce(f)
	}

	sim.Logger = jobLogger
	sim.Observer = r.metrics
	return sim, nil
}

// run integrates one job. The returned report is filled in as far as the
// run got, also when err is non-nil.
func (r *runner) run(ctx context.Context, job Job) (report types.IntegrationReport, err error) {
	report.Name = job.Name
	start := time.Now()
	defer func() {
		report.Duration = time.Since(start)
		report.CompletedAt = time.Now().UTC()
		if err != nil {
			report.Error = err.Error()
		}
	}()

	if job.Target == "" {
		return report, fmt.Errorf("job %s: target epoch is required", job.Name)
	}
	target, err := astrotime.Parse(job.Target)
	if err != nil {
		return report, err
	}
	epoch, err := r.resolveEpoch(job.Epoch)
	if err != nil {
		return report, err
	}

	sim, err := r.buildSimulation(ctx, job, epoch)
	if err != nil {
		return report, err
	}
	report.Integrator = sim.Integrator.Name()
	report.Bodies = sim.Len()
	report.StartEpoch = sim.Epoch.String()
	for _, f := range sim.Forces {
		report.Forces = append(report.Forces, f.Name())
	}

	recorder := analysis.NewEnergyRecorder(nil)
	if job.SnapshotFile != "" {
		w, err := nbody.NewJSONLSnapshotWriter(job.SnapshotFile)
		if err != nil {
			return report, fmt.Errorf("failed to open snapshot file: %w", err)
		}
		recorder.Next = w
	}
	defer recorder.Close()

	r.logger.Info("integrating", "job", job.Name, "bodies", sim.Len(), "from", sim.Epoch.String(), "to", target.String())
	err = sim.IntegrateWithSink(target, r.cfg.Output.SnapshotEvery, recorder)

	report.EndEpoch = sim.Epoch.String()
	report.Snapshots = recorder.Snapshots()
	report.Energy = recorder.Drift()
	report.Changes = recorder.Changes()
	if err != nil {
		return report, err
	}

	if job.StateOut != "" {
		if err := ephemeris.SaveStateFile(job.StateOut, sim.Particles); err != nil {
			return report, fmt.Errorf("failed to save final states: %w", err)
		}
	}

	r.logger.Info("integration finished", "job", job.Name, "max_energy_drift", report.Energy.Max)
	return report, nil
}

func writeYAML(path string, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
