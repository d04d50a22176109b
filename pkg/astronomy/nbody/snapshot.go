package nbody

import (
	"bufio"
	"encoding/json"
	"math"
	"os"

	errorsmod "cosmossdk.io/errors"

	"github.com/kjnapes/spacerocks/pkg/astronomy/astrotime"
)

// SnapshotSink receives the state of a simulation while it integrates
type SnapshotSink interface {
	OnStart(estimatedSteps int, every int) error
	OnSnapshot(epoch astrotime.Time, bodies []Body) error
	OnEnd(final astrotime.Time) error
	Close() error
}

// JSONLSnapshotWriter writes one JSON object per snapshot to a file
type JSONLSnapshotWriter struct {
	f  *os.File
	bw *bufio.Writer
}

type jsonlSnapshot struct {
	Epoch  astrotime.Time `json:"epoch"`
	Bodies []Body         `json:"bodies"`
}

func NewJSONLSnapshotWriter(path string) (*JSONLSnapshotWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &JSONLSnapshotWriter{f: f, bw: bufio.NewWriter(f)}, nil
}

func (w *JSONLSnapshotWriter) OnStart(int, int) error { return nil }

func (w *JSONLSnapshotWriter) OnSnapshot(epoch astrotime.Time, bodies []Body) error {
	b, err := json.Marshal(jsonlSnapshot{Epoch: epoch, Bodies: bodies})
	if err != nil {
		return err
	}
	if _, err := w.bw.Write(b); err != nil {
		return err
	}
	return w.bw.WriteByte('\n')
}

func (w *JSONLSnapshotWriter) OnEnd(astrotime.Time) error { return w.bw.Flush() }

func (w *JSONLSnapshotWriter) Close() error {
	if w.bw != nil {
		_ = w.bw.Flush()
	}
	if w.f != nil {
		return w.f.Close()
	}
	return nil
}

// IntegrateWithSink integrates to target like Integrate, handing the state
// to sink before the first step, after every 'every' steps and on arrival.
// The sink is not closed.
func (s *Simulation) IntegrateWithSink(target astrotime.Time, every int, sink SnapshotSink) error {
	if every <= 0 {
		every = 1
	}
	target = target.In(s.Epoch.Scale).As(s.Epoch.Format)

	dt := s.Integrator.Timestep()
	if dt == 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return errorsmod.Wrapf(ErrInvalidTimestep, "%g", dt)
	}
	estimated := int(math.Ceil(math.Abs(target.Sub(s.Epoch) / dt)))
	if err := sink.OnStart(estimated, every); err != nil {
		return err
	}
	if err := sink.OnSnapshot(s.Epoch, s.Particles); err != nil {
		return err
	}

	steps := 0
	err := s.integrate(target, func() error {
		steps++
		if steps%every != 0 {
			return nil
		}
		return sink.OnSnapshot(s.Epoch, s.Particles)
	})
	if err != nil {
		return err
	}
	if steps%every != 0 {
		if err := sink.OnSnapshot(s.Epoch, s.Particles); err != nil {
			return err
		}
	}
	return sink.OnEnd(s.Epoch)
}
