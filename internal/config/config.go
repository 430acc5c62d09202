// Package config loads paesdiag settings from defaults, an optional YAML
// file and PAESDIAG_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/arbor/paesdiag/internal/diagnostic"
	"github.com/arbor/paesdiag/internal/routes"
	"github.com/arbor/paesdiag/internal/unlock"
)

// Config is the full application configuration.
type Config struct {
	DB      DBConfig             `yaml:"db"`
	HTTP    HTTPConfig           `yaml:"http"`
	Log     LogConfig            `yaml:"log"`
	Scoring unlock.ScoringConfig `yaml:"scoring"`
	Routes  RoutesConfig         `yaml:"routes"`
	Mastery MasteryConfig        `yaml:"mastery"`
}

// DBConfig selects the database. An empty SQLite DSN resolves to the
// default data path.
type DBConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite postgres"`
	DSN    string `yaml:"dsn"`
}

type HTTPConfig struct {
	Addr           string        `yaml:"addr" validate:"required"`
	CORSOrigins    []string      `yaml:"cors_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// RoutesConfig sizes the learning-route results.
type RoutesConfig struct {
	MaxAtoms        int  `yaml:"max_atoms" validate:"gt=0"`
	TopAtoms        int  `yaml:"top_atoms" validate:"gt=0"`
	QuickWins       int  `yaml:"quick_wins" validate:"gt=0"`
	LowHangingFruit int  `yaml:"low_hanging_fruit" validate:"gt=0"`
	Combined        bool `yaml:"combined"`
}

type MasteryConfig struct {
	EvidencePolicy string `yaml:"evidence_policy" validate:"oneof=primary primary_and_secondary"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DB: DBConfig{Driver: "sqlite"},
		HTTP: HTTPConfig{
			Addr:           ":8080",
			CORSOrigins:    []string{"http://localhost:3000"},
			RequestTimeout: 30 * time.Second,
		},
		Log:     LogConfig{Level: "info", Format: "text"},
		Scoring: unlock.DefaultScoringConfig(),
		Routes: RoutesConfig{
			MaxAtoms:        routes.DefaultMaxAtoms,
			TopAtoms:        diagnostic.DefaultTopAtoms,
			QuickWins:       diagnostic.DefaultQuickWins,
			LowHangingFruit: diagnostic.DefaultLowHangingFruitLimit,
		},
		Mastery: MasteryConfig{EvidencePolicy: string(diagnostic.EvidencePrimary)},
	}
}

// Load merges defaults, the YAML file at path (skipped when path is empty)
// and environment overrides, then validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DB.Driver = envOr("PAESDIAG_DB_DRIVER", cfg.DB.Driver)
	cfg.DB.DSN = envOr("PAESDIAG_DB", cfg.DB.DSN)
	cfg.HTTP.Addr = envOr("PAESDIAG_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.CORSOrigins = csvOr("PAESDIAG_CORS_ORIGINS", cfg.HTTP.CORSOrigins)
	if v := os.Getenv("PAESDIAG_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.RequestTimeout = d
		}
	}
	cfg.Log.Level = strings.ToLower(envOr("PAESDIAG_LOG_LEVEL", cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(envOr("PAESDIAG_LOG_FORMAT", cfg.Log.Format))
	if v := os.Getenv("PAESDIAG_MAX_ROUTE_ATOMS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Routes.MaxAtoms = i
		}
	}
	cfg.Mastery.EvidencePolicy = envOr("PAESDIAG_EVIDENCE_POLICY", cfg.Mastery.EvidencePolicy)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate config: %w", err)
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}
	if err := c.Scoring.Validate(); err != nil {
		problems = append(problems, "Config.Scoring: "+err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

// AnalyzerOptions maps the routes and scoring sections onto analyzer
// options.
func (c Config) AnalyzerOptions() diagnostic.Options {
	return diagnostic.Options{
		Scoring:              c.Scoring,
		MaxRouteAtoms:        c.Routes.MaxAtoms,
		TopAtoms:             c.Routes.TopAtoms,
		QuickWins:            c.Routes.QuickWins,
		LowHangingFruitLimit: c.Routes.LowHangingFruit,
		CombinedRoute:        c.Routes.Combined,
	}
}

// EvidencePolicy returns the configured policy. Validate guarantees it
// parses.
func (c Config) EvidencePolicy() diagnostic.EvidencePolicy {
	p, err := diagnostic.ParseEvidencePolicy(c.Mastery.EvidencePolicy)
	if err != nil {
		return diagnostic.EvidencePrimary
	}
	return p
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func csvOr(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
