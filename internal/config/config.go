package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mkhts/gotraj"
)

// Config represents one trajectory run: firing data, ground weather,
// projectile, drag model and ambient settings.
type Config struct {
	Shot       ShotConfig       `json:"shot"`
	Atmosphere AtmosphereConfig `json:"atmosphere"`
	Projectile ProjectileConfig `json:"projectile"`
	Drag       DragConfig       `json:"drag"`
	Logging    LoggingConfig    `json:"logging"`
	Tracing    TracingConfig    `json:"tracing"`
	Metrics    MetricsConfig    `json:"metrics"`
}

// ShotConfig contains firing parameters and integration settings.
type ShotConfig struct {
	// V0 is the muzzle velocity in m/s
	V0 float64 `json:"v0"`

	// Elevation is the launch elevation in degrees (0-90)
	Elevation float64 `json:"elevation"`

	// Dt is the integration time step in seconds
	Dt float64 `json:"dt"`

	// MaxSteps aborts runs that do not reach the ground
	MaxSteps int `json:"max_steps"`
}

// AtmosphereConfig contains ground weather and the optional sounding file.
type AtmosphereConfig struct {
	// Temperature at the gun in degC
	Temperature float64 `json:"temperature"`

	// Pressure at the gun in hPa
	Pressure float64 `json:"pressure"`

	// Height of the gun above sea level in m
	Height float64 `json:"height"`

	// PressureModel is "barometric" or "powerlaw"
	PressureModel string `json:"pressure_model"`

	// MeteoFile is an optional CSV sounding (Meteo A) table
	MeteoFile string `json:"meteo_file"`
}

// ProjectileConfig describes the shell.
type ProjectileConfig struct {
	// Radius in m (half the caliber)
	Radius float64 `json:"radius"`

	// Mass in kg
	Mass float64 `json:"mass"`

	// Direction is the firing azimuth (6400 per circle)
	Direction float64 `json:"direction"`
}

// DragConfig overrides the axial drag estimate.
type DragConfig struct {
	AxialArea float64 `json:"axial_area"`
	AxialCw   float64 `json:"axial_cw"`
}

// LoggingConfig is passed to logging.New.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// TracingConfig enables the stdout span exporter.
type TracingConfig struct {
	Enabled     bool   `json:"enabled"`
	ServiceName string `json:"service_name"`
}

// MetricsConfig controls the Prometheus textfile dump.
type MetricsConfig struct {
	// Textfile is written after the run when non-empty
	Textfile string `json:"textfile"`
}

// Load reads configuration from a JSON file on top of the defaults.
// An empty path returns the default configuration. A named file must exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		cfg.applyEnvironmentOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()
	return cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns the reference firing: 816 m/s at 45 degrees from
// 691 m with 21.5 degC and 944 hPa on the ground.
func DefaultConfig() *Config {
	return &Config{
		Shot: ShotConfig{
			V0:        816,
			Elevation: 45,
			Dt:        0.1,
			MaxSteps:  gotraj.MAX_STEPS,
		},
		Atmosphere: AtmosphereConfig{
			Temperature:   21.5,
			Pressure:      944,
			Height:        691,
			PressureModel: "barometric",
		},
		Projectile: ProjectileConfig{
			Radius:    0.077, // 155 mm shell
			Mass:      42,
			Direction: 0,
		},
		Drag: DragConfig{
			AxialArea: gotraj.AxialArea,
			AxialCw:   gotraj.AxialCw,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "gotraj",
		},
	}
}

// applyEnvironmentOverrides applies GOTRAJ_* environment variables.
func (c *Config) applyEnvironmentOverrides() {
	if v := os.Getenv("GOTRAJ_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("GOTRAJ_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("GOTRAJ_TRACING_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Tracing.Enabled = b
		}
	}
	if v := os.Getenv("GOTRAJ_METEO_FILE"); v != "" {
		c.Atmosphere.MeteoFile = v
	}
	if v := os.Getenv("GOTRAJ_METRICS_TEXTFILE"); v != "" {
		c.Metrics.Textfile = v
	}
}

// Validate checks the values that Load cannot catch.
func (c *Config) Validate() error {
	if c.Shot.V0 <= 0 {
		return fmt.Errorf("shot.v0 must be positive, got %g", c.Shot.V0)
	}
	if c.Shot.Elevation < 0 || c.Shot.Elevation > gotraj.MAX_ELEV {
		return fmt.Errorf("shot.elevation must be between 0 and %g, got %g", gotraj.MAX_ELEV, c.Shot.Elevation)
	}
	if c.Shot.Dt <= 0 {
		return fmt.Errorf("shot.dt must be positive, got %g", c.Shot.Dt)
	}
	if c.Shot.MaxSteps <= 0 {
		return fmt.Errorf("shot.max_steps must be positive, got %d", c.Shot.MaxSteps)
	}
	if c.Atmosphere.Height <= 0 {
		return fmt.Errorf("atmosphere.height must be positive, got %g", c.Atmosphere.Height)
	}
	if c.Projectile.Mass <= 0 {
		return fmt.Errorf("projectile.mass must be positive, got %g", c.Projectile.Mass)
	}
	if c.Projectile.Radius < 0 {
		return fmt.Errorf("projectile.radius must not be negative, got %g", c.Projectile.Radius)
	}
	if _, err := c.AtmosOpt(); err != nil {
		return fmt.Errorf("atmosphere.pressure_model: %w", err)
	}
	return nil
}

// AtmosOpt converts the atmosphere section into model options.
func (c *Config) AtmosOpt() (*gotraj.AtmosOpt, error) {
	opt := gotraj.NewAtmosOpt()
	if c.Atmosphere.PressureModel != "" {
		if err := opt.Pressure.Set(c.Atmosphere.PressureModel); err != nil {
			return nil, err
		}
	}
	return opt, nil
}

// DragOpt converts the drag section into model options.
func (c *Config) DragOpt() *gotraj.DragOpt {
	opt := gotraj.NewDragOpt()
	opt.AxialArea = c.Drag.AxialArea
	opt.AxialCw = c.Drag.AxialCw
	return opt
}

// NewProjectile builds the projectile described by the config.
func (c *Config) NewProjectile() *gotraj.Projectile {
	return gotraj.NewProjectile(c.Projectile.Radius, c.Projectile.Mass, c.Projectile.Direction)
}

// SimOpt converts the shot section into integration options.
func (c *Config) SimOpt() *gotraj.SimOpt {
	opt := gotraj.NewSimOpt()
	opt.V0 = c.Shot.V0
	opt.Elevation = c.Shot.Elevation
	opt.Dt = c.Shot.Dt
	opt.MaxSteps = c.Shot.MaxSteps
	return opt
}
