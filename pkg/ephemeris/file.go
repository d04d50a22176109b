package ephemeris

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	errorsmod "cosmossdk.io/errors"
	"gopkg.in/yaml.v3"

	"github.com/kjnapes/spacerocks/pkg/astronomy/astrotime"
	"github.com/kjnapes/spacerocks/pkg/astronomy/coordinates"
	"github.com/kjnapes/spacerocks/pkg/astronomy/nbody"
)

// StateFile is the on-disk form of a set of body states
type StateFile struct {
	Bodies []nbody.Body `json:"bodies" yaml:"bodies"`
}

// FileProvider serves body states read from a YAML or JSON state file
type FileProvider struct {
	path     string
	bodies   map[string]nbody.Body
	Observer LookupObserver
}

// LoadStateFile reads a state file; the format follows the extension,
// with anything other than .json read as YAML
func LoadStateFile(path string) (*StateFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sf StateFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(raw, &sf)
	} else {
		err = yaml.Unmarshal(raw, &sf)
	}
	if err != nil {
		return nil, errorsmod.Wrapf(err, "parsing %s", path)
	}
	return &sf, nil
}

// SaveStateFile writes bodies in the format implied by the extension
func SaveStateFile(path string, bodies []nbody.Body) error {
	sf := StateFile{Bodies: bodies}

	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(sf, "", "  ")
	} else {
		data, err = yaml.Marshal(sf)
	}
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func NewFileProvider(path string) (*FileProvider, error) {
	sf, err := LoadStateFile(path)
	if err != nil {
		return nil, err
	}
	p := &FileProvider{path: path, bodies: make(map[string]nbody.Body, len(sf.Bodies))}
	for _, b := range sf.Bodies {
		p.bodies[strings.ToLower(b.Name)] = b
	}
	return p, nil
}

// Names lists the bodies in the file
func (p *FileProvider) Names() []string {
	names := make([]string, 0, len(p.bodies))
	for _, b := range p.bodies {
		names = append(names, b.Name)
	}
	return names
}

// Epoch is the epoch of the stored states; ok is false for an empty file
func (p *FileProvider) Epoch() (epoch astrotime.Time, ok bool) {
	for _, b := range p.bodies {
		return b.Epoch, true
	}
	return astrotime.Time{}, false
}

// BodyFromService returns the stored state of name. The stored epoch must
// match; the state is rotated into plane and must already be relative to
// origin.
func (p *FileProvider) BodyFromService(_ context.Context, name string, epoch astrotime.Time, plane coordinates.ReferencePlane, origin coordinates.Origin) (body nbody.Body, err error) {
	start := time.Now()
	defer func() {
		if p.Observer != nil {
			p.Observer.ObserveLookup("file", err, time.Since(start))
		}
	}()

	stored, ok := p.bodies[strings.ToLower(name)]
	if !ok {
		return nbody.Body{}, errorsmod.Wrapf(ErrBodyNotFound, "%q in %s", name, p.path)
	}
	body = stored.Clone()

	if !body.Epoch.Equal(epoch) {
		return nbody.Body{}, errorsmod.Wrapf(ErrStateMismatch, "%s stored at %s, requested %s", name, body.Epoch, epoch)
	}
	if body.Origin.Name() != origin.Name() {
		return nbody.Body{}, errorsmod.Wrapf(ErrStateMismatch, "%s stored relative to %s, requested %s", name, body.Origin, origin)
	}
	if err := body.ChangeReferencePlane(plane); err != nil {
		return nbody.Body{}, err
	}
	body.Epoch = epoch
	body.Origin = origin
	return body, nil
}
