package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/kjnapes/spacerocks/pkg/astronomy/coordinates"
)

const (
	configDirName  = ".spacerocks"
	configFileName = "config.yaml"
	envPrefix      = "SPACEROCKS"
)

// Config represents the spacerocks configuration
type Config struct {
	Simulation SimulationConfig `yaml:"simulation" mapstructure:"simulation"`
	Ephemeris  EphemerisConfig  `yaml:"ephemeris" mapstructure:"ephemeris"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Client     ClientConfig     `yaml:"client" mapstructure:"client"`
	Resources  ResourcesConfig  `yaml:"resources" mapstructure:"resources"`
}

// SimulationConfig selects the integrator and force model
type SimulationConfig struct {
	Integrator     string   `yaml:"integrator" mapstructure:"integrator"`
	Timestep       float64  `yaml:"timestep" mapstructure:"timestep"`
	Epsilon        float64  `yaml:"epsilon" mapstructure:"epsilon"`
	MaxRetries     int      `yaml:"max_retries" mapstructure:"max_retries"`
	Forces         []string `yaml:"forces" mapstructure:"forces"`
	CentralBody    string   `yaml:"central_body" mapstructure:"central_body"`
	ReferencePlane string   `yaml:"reference_plane" mapstructure:"reference_plane"`
	Origin         string   `yaml:"origin" mapstructure:"origin"`
}

// EphemerisConfig chooses where initial states come from
type EphemerisConfig struct {
	Provider          string        `yaml:"provider" mapstructure:"provider"`
	HorizonsURL       string        `yaml:"horizons_url" mapstructure:"horizons_url"`
	StateFile         string        `yaml:"state_file" mapstructure:"state_file"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	RetryMax          int           `yaml:"retry_max" mapstructure:"retry_max"`
	CacheSize         int           `yaml:"cache_size" mapstructure:"cache_size"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// OutputConfig controls snapshots, final states and metrics
type OutputConfig struct {
	SnapshotFile  string `yaml:"snapshot_file" mapstructure:"snapshot_file"`
	SnapshotEvery int    `yaml:"snapshot_every" mapstructure:"snapshot_every"`
	StateOut      string `yaml:"state_out" mapstructure:"state_out"`
	MetricsAddr   string `yaml:"metrics_addr" mapstructure:"metrics_addr"`
}

// ClientConfig contains process-wide settings
type ClientConfig struct {
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	LogJSON  bool   `yaml:"log_json" mapstructure:"log_json"`
	DataDir  string `yaml:"data_dir" mapstructure:"data_dir"`
}

// ResourcesConfig contains resource limits
type ResourcesConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// HomeDir is $HOME/.spacerocks
func HomeDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, configDirName)
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	home := HomeDir()

	return &Config{
		Simulation: SimulationConfig{
			Integrator:     "ias15",
			Timestep:       1.0,
			Epsilon:        1e-9,
			MaxRetries:     32,
			Forces:         []string{"gravity"},
			CentralBody:    "sun",
			ReferencePlane: "ECLIPJ2000",
			Origin:         "SSB",
		},
		Ephemeris: EphemerisConfig{
			Provider:          "horizons",
			HorizonsURL:       "https://ssd.jpl.nasa.gov/api/horizons.api",
			RequestsPerSecond: 2,
			RetryMax:          3,
			CacheSize:         256,
			Timeout:           30 * time.Second,
		},
		Output: OutputConfig{
			SnapshotEvery: 10,
		},
		Client: ClientConfig{
			LogLevel: "info",
			DataDir:  filepath.Join(home, "data"),
		},
		Resources: ResourcesConfig{
			MaxConcurrent: 4,
		},
	}
}

// newViper returns a viper instance seeded with the defaults, so keys absent
// from the file keep their default values
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("simulation.integrator", def.Simulation.Integrator)
	v.SetDefault("simulation.timestep", def.Simulation.Timestep)
	v.SetDefault("simulation.epsilon", def.Simulation.Epsilon)
	v.SetDefault("simulation.max_retries", def.Simulation.MaxRetries)
	v.SetDefault("simulation.forces", def.Simulation.Forces)
	v.SetDefault("simulation.central_body", def.Simulation.CentralBody)
	v.SetDefault("simulation.reference_plane", def.Simulation.ReferencePlane)
	v.SetDefault("simulation.origin", def.Simulation.Origin)
	v.SetDefault("ephemeris.provider", def.Ephemeris.Provider)
	v.SetDefault("ephemeris.horizons_url", def.Ephemeris.HorizonsURL)
	v.SetDefault("ephemeris.state_file", def.Ephemeris.StateFile)
	v.SetDefault("ephemeris.requests_per_second", def.Ephemeris.RequestsPerSecond)
	v.SetDefault("ephemeris.retry_max", def.Ephemeris.RetryMax)
	v.SetDefault("ephemeris.cache_size", def.Ephemeris.CacheSize)
	v.SetDefault("ephemeris.timeout", def.Ephemeris.Timeout)
	v.SetDefault("output.snapshot_file", def.Output.SnapshotFile)
	v.SetDefault("output.snapshot_every", def.Output.SnapshotEvery)
	v.SetDefault("output.state_out", def.Output.StateOut)
	v.SetDefault("output.metrics_addr", def.Output.MetricsAddr)
	v.SetDefault("client.log_level", def.Client.LogLevel)
	v.SetDefault("client.log_json", def.Client.LogJSON)
	v.SetDefault("client.data_dir", def.Client.DataDir)
	v.SetDefault("resources.max_concurrent", def.Resources.MaxConcurrent)
	return v
}

// LoadConfig reads the configuration at path, or searches $HOME/.spacerocks,
// the working directory and ./configs when path is empty. A missing file
// yields the defaults. SPACEROCKS_* environment variables override both.
func LoadConfig(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(HomeDir())
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if path == "" || !os.IsNotExist(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// SaveConfig writes config as YAML to path, creating the data directory
func SaveConfig(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if config.Client.DataDir != "" {
		if err := os.MkdirAll(config.Client.DataDir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", config.Client.DataDir, err)
		}
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GetConfigPath returns the path of the default config file
func GetConfigPath() string {
	return filepath.Join(HomeDir(), configFileName)
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	sim := config.Simulation

	switch strings.ToLower(sim.Integrator) {
	case "ias15", "leapfrog":
	default:
		return fmt.Errorf("unknown integrator: %s", sim.Integrator)
	}

	if sim.Timestep == 0 {
		return fmt.Errorf("timestep cannot be zero")
	}

	if sim.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive")
	}

	if sim.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}

	if len(sim.Forces) == 0 {
		return fmt.Errorf("at least one force must be specified")
	}

	validForces := map[string]bool{
		"gravity":   true,
		"newtonian": true,
		"gr":        true,
		"solar_gr":  true,
		"j2":        true,
		"solar_j2":  true,
	}

	for _, f := range sim.Forces {
		if !validForces[strings.ToLower(f)] {
			return fmt.Errorf("invalid force: %s", f)
		}
	}

	if _, err := coordinates.ParseReferencePlane(sim.ReferencePlane); err != nil {
		return err
	}

	if _, err := coordinates.ParseOrigin(sim.Origin); err != nil {
		return err
	}

	switch config.Ephemeris.Provider {
	case "horizons":
		if config.Ephemeris.HorizonsURL == "" {
			return fmt.Errorf("horizons_url cannot be empty")
		}
	case "file":
		if config.Ephemeris.StateFile == "" {
			return fmt.Errorf("state_file must be set for the file provider")
		}
	default:
		return fmt.Errorf("unknown ephemeris provider: %s", config.Ephemeris.Provider)
	}

	if config.Ephemeris.CacheSize < 0 {
		return fmt.Errorf("cache_size cannot be negative")
	}

	if config.Output.SnapshotEvery <= 0 {
		return fmt.Errorf("snapshot_every must be positive")
	}

	if config.Resources.MaxConcurrent <= 0 {
		return fmt.Errorf("max_concurrent must be positive")
	}

	return nil
}

// IsFileProvider reports whether states come from a local file
func (c *Config) IsFileProvider() bool {
	return c.Ephemeris.Provider == "file"
}
