package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/glassbox-planner/compat-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Matrix    MatrixConfig    `yaml:"matrix" mapstructure:"matrix"`
	Synonyms  SynonymsConfig  `yaml:"synonyms" mapstructure:"synonyms"`
	Parcels   ParcelsConfig   `yaml:"parcels" mapstructure:"parcels"`
	Adjacency AdjacencyConfig `yaml:"adjacency" mapstructure:"adjacency"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run history backend.
type StoreConfig struct {
	Driver      string            `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string            `yaml:"database_url" mapstructure:"database_url"`
	Pool        *store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// MatrixConfig configures compatibility matrix parsing.
type MatrixConfig struct {
	Path              string   `yaml:"path" mapstructure:"path"`
	Sheet             string   `yaml:"sheet" mapstructure:"sheet"`
	Charset           string   `yaml:"charset" mapstructure:"charset"`
	NAMarkers         []string `yaml:"na_markers" mapstructure:"na_markers"`
	SymmetryTolerance int      `yaml:"symmetry_tolerance" mapstructure:"symmetry_tolerance"`
}

// SynonymsConfig points at the optional label normalization table.
type SynonymsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ParcelsConfig configures parcel dataset ingestion.
type ParcelsConfig struct {
	Path          string `yaml:"path" mapstructure:"path"`
	LandUseColumn string `yaml:"land_use_column" mapstructure:"land_use_column"`
	IDColumn      string `yaml:"id_column" mapstructure:"id_column"`
}

// AdjacencyConfig defines when two parcels count as neighbors. Distance is
// in the dataset's coordinate units; zero means touching only.
type AdjacencyConfig struct {
	Distance float64 `yaml:"distance" mapstructure:"distance"`
}

// ScoringConfig selects the aggregation policy and classification rounding.
type ScoringConfig struct {
	Policy     string  `yaml:"policy" mapstructure:"policy"`
	Percentile float64 `yaml:"percentile" mapstructure:"percentile"`
	Rounding   string  `yaml:"rounding" mapstructure:"rounding"`
	Workers    int     `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig configures where run artifacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the HTTP results server.
type ServerConfig struct {
	Port      int     `yaml:"port" mapstructure:"port"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COMPAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 10)
	v.SetDefault("matrix.na_markers", []string{"", "NA", "N/A", "-"})
	v.SetDefault("matrix.symmetry_tolerance", 0)
	v.SetDefault("parcels.land_use_column", "land_use")
	v.SetDefault("adjacency.distance", 0)
	v.SetDefault("scoring.policy", "minimum")
	v.SetDefault("scoring.percentile", 0.10)
	v.SetDefault("scoring.rounding", "floor")
	v.SetDefault("output.dir", "out")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// Validate checks the configuration for the given command mode. Modes keep
// requirements scoped: "run" needs input paths, "serve" needs a usable port.
func (c *Config) Validate(mode string) error {
	var missing []string

	check := func(cond bool, msg string) {
		if cond {
			missing = append(missing, msg)
		}
	}

	switch mode {
	case "run":
		check(c.Matrix.Path == "", "matrix.path is required")
		check(c.Parcels.Path == "", "parcels.path is required")
	case "validate":
		check(c.Matrix.Path == "", "matrix.path is required")
	case "serve":
		check(c.Server.Port <= 0, "server.port must be > 0")
		check(c.Server.RateLimit <= 0, "server.rate_limit must be > 0")
	case "runs":
		// Store defaults are always usable.
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	check(c.Adjacency.Distance < 0, "adjacency.distance must be >= 0")
	check(c.Scoring.Policy == "percentile" && (c.Scoring.Percentile <= 0 || c.Scoring.Percentile > 1),
		"scoring.percentile must be in (0, 1]")
	check(c.Store.Driver == "postgres" && c.Store.DatabaseURL == "", "store.database_url is required for postgres")

	if len(missing) > 0 {
		return eris.Errorf("config: %s", strings.Join(missing, "; "))
	}
	return nil
}
