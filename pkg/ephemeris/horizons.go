// Package ephemeris resolves body states for a simulation, either from the
// JPL Horizons API or from a local state file, with an optional LRU cache
// in front of either.
package ephemeris

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/kjnapes/spacerocks/pkg/astronomy/astrotime"
	"github.com/kjnapes/spacerocks/pkg/astronomy/constants"
	"github.com/kjnapes/spacerocks/pkg/astronomy/coordinates"
	"github.com/kjnapes/spacerocks/pkg/astronomy/nbody"
)

// DefaultHorizonsURL is the JPL Horizons REST endpoint
const DefaultHorizonsURL = "https://ssd.jpl.nasa.gov/api/horizons.api"

// LookupObserver is told about every provider lookup
type LookupObserver interface {
	ObserveLookup(source string, err error, elapsed time.Duration)
}

// HorizonsConfig tunes the Horizons client
type HorizonsConfig struct {
	URL               string
	RequestsPerSecond float64
	RetryMax          int
	Timeout           time.Duration
}

// DefaultHorizonsConfig stays well inside the API's fair-use limits
func DefaultHorizonsConfig() HorizonsConfig {
	return HorizonsConfig{
		URL:               DefaultHorizonsURL,
		RequestsPerSecond: 2,
		RetryMax:          3,
		Timeout:           30 * time.Second,
	}
}

// HorizonsClient fetches state vectors from JPL Horizons
type HorizonsClient struct {
	baseURL  string
	http     *retryablehttp.Client
	limiter  *rate.Limiter
	logger   log.Logger
	Observer LookupObserver
}

func NewHorizonsClient(cfg HorizonsConfig, logger log.Logger) *HorizonsClient {
	if cfg.URL == "" {
		cfg.URL = DefaultHorizonsURL
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = logger.With("module", "horizons-http")
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &HorizonsClient{
		baseURL: cfg.URL,
		http:    client,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With("module", "horizons"),
	}
}

type horizonsResponse struct {
	Result string `json:"result"`
	Error  string `json:"error"`
}

// BodyFromService queries the state of name at epoch. The body's mass is
// filled in when the name is in the GM table.
func (c *HorizonsClient) BodyFromService(ctx context.Context, name string, epoch astrotime.Time, plane coordinates.ReferencePlane, origin coordinates.Origin) (body nbody.Body, err error) {
	start := time.Now()
	defer func() {
		if c.Observer != nil {
			c.Observer.ObserveLookup("horizons", err, time.Since(start))
		}
	}()

	query, err := horizonsQuery(name, epoch, plane, origin)
	if err != nil {
		return nbody.Body{}, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nbody.Body{}, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nbody.Body{}, errorsmod.Wrap(ErrRequestFailed, err.Error())
	}
	c.logger.Debug("querying horizons", "body", name, "epoch", epoch.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return nbody.Body{}, errorsmod.Wrapf(ErrRequestFailed, "%s: %s", name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nbody.Body{}, errorsmod.Wrapf(ErrRequestFailed, "reading response: %s", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nbody.Body{}, errorsmod.Wrapf(ErrRequestFailed, "%s: status %d", name, resp.StatusCode)
	}

	var decoded horizonsResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nbody.Body{}, errorsmod.Wrapf(ErrRequestFailed, "decoding response: %s", err)
	}
	if decoded.Error != "" {
		return nbody.Body{}, errorsmod.Wrapf(ErrBodyNotFound, "%s: %s", name, decoded.Error)
	}

	state, err := parseVectors(decoded.Result)
	if err != nil {
		return nbody.Body{}, errorsmod.Wrapf(err, "%s", name)
	}

	body = nbody.FromXYZ(name, state[0], state[1], state[2], state[3], state[4], state[5], epoch, plane, origin)
	if m, ok := constants.KnownMass(name); ok {
		body.SetMass(m)
	}
	c.logger.Info("resolved body", "body", name, "r", body.R())
	return body, nil
}

func horizonsQuery(name string, epoch astrotime.Time, plane coordinates.ReferencePlane, origin coordinates.Origin) (url.Values, error) {
	q := url.Values{}
	q.Set("command", quote(name))

	q.Set("ref_system", quote("J2000"))
	switch plane {
	case coordinates.J2000:
		q.Set("ref_plane", quote("frame"))
	case coordinates.ECLIPJ2000:
		q.Set("ref_plane", quote("ecliptic"))
	default:
		return nil, errorsmod.Wrapf(ErrUnsupportedPlane, "%s", plane)
	}

	// Horizons has no TAI; TT is exact to the second of it
	if epoch.Scale == astrotime.TAI {
		epoch = epoch.In(astrotime.TT)
	}
	if epoch.Scale == astrotime.UTC {
		q.Set("TIME_TYPE", quote("UT"))
	} else {
		q.Set("TIME_TYPE", quote(epoch.Scale.String()))
	}
	q.Set("TLIST", quote(strconv.FormatFloat(epoch.Epoch, 'f', -1, 64)))
	q.Set("TLIST_TYPE", quote(epoch.Format.String()))

	q.Set("center", quote("@"+origin.Name()))
	q.Set("make_ephem", quote("yes"))
	q.Set("ephem_type", quote("vectors"))
	q.Set("vec_corr", quote("None"))
	q.Set("out_units", quote("AU-D"))
	q.Set("csv_format", quote("yes"))
	q.Set("vec_delta_t", quote("no"))
	q.Set("vec_table", quote("2x"))
	q.Set("vec_labels", quote("no"))
	return q, nil
}

func quote(s string) string { return "'" + s + "'" }

// parseVectors reads x, y, z, vx, vy, vz from the first row after $$SOE.
// The calendar column does not parse as a number and is skipped.
func parseVectors(result string) ([6]float64, error) {
	var state [6]float64

	lines := strings.Split(result, "\n")
	row := ""
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "$$SOE") && i+1 < len(lines) {
			row = lines[i+1]
			break
		}
	}
	if row == "" {
		return state, ErrNoData
	}

	var values []float64
	for _, field := range strings.Split(row, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err == nil {
			values = append(values, v)
		}
	}
	if len(values) < 7 {
		return state, errorsmod.Wrapf(ErrNoData, "short row %q", strings.TrimSpace(row))
	}
	copy(state[:], values[1:7])
	return state, nil
}

func (c *HorizonsClient) String() string {
	return fmt.Sprintf("horizons(%s)", c.baseURL)
}
