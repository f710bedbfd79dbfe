// Package config holds the runtime configuration shared by the browser
// session, the court workflow and the CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/titanous/json5"
)

// Court names a court complex by the visible labels of the three cascading
// dropdowns on the cause-list page.
type Court struct {
	State    string `json:"state"`
	District string `json:"district"`
	Complex  string `json:"complex"`
}

// Config holds all runtime configuration.
type Config struct {
	BaseURL     string `json:"baseUrl"`
	LandingPath string `json:"landingPath"`
	OutputDir   string `json:"outputDir"`
	Court       Court  `json:"court"`

	Headless   bool   `json:"headless"`
	ChromePath string `json:"chromePath"`
	UserAgent  string `json:"userAgent"`

	// Timing
	PageLoadTimeout Duration `json:"pageLoadTimeout"`
	WaitTimeout     Duration `json:"waitTimeout"`
	PollInterval    Duration `json:"pollInterval"`
	LandingPause    Duration `json:"landingPause"`
	ResultsPause    Duration `json:"resultsPause"`
	DownloadPause   Duration `json:"downloadPause"`
}

// Duration is a time.Duration that reads Go duration strings ("30s") from
// config files.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(time.Duration(d).String())), nil
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	// JSON5 allows single-quoted strings.
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	} else {
		// Bare numbers are seconds.
		secs, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("duration %s: %w", b, err)
		}
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// DefaultCourt is the court used whenever the caller does not name one.
var DefaultCourt = Court{
	State:    "ANDHRA PRADESH",
	District: "CHITTOOR",
	Complex:  "TIRUPATI",
}

// Default returns a Config populated with the site defaults.
func Default() Config {
	return Config{
		BaseURL:     "https://services.ecourts.gov.in/ecourtindia_v6/",
		LandingPath: "?p=cause_list/",
		OutputDir:   "scraper_output",
		Court:       DefaultCourt,
		Headless:    true,
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",

		PageLoadTimeout: Duration(30 * time.Second),
		WaitTimeout:     Duration(15 * time.Second),
		PollInterval:    Duration(250 * time.Millisecond),
		LandingPause:    Duration(2 * time.Second),
		ResultsPause:    Duration(2 * time.Second),
		DownloadPause:   Duration(10 * time.Second),
	}
}

// LandingURL is the cause-list entry point.
func (c Config) LandingURL() string {
	return c.BaseURL + c.LandingPath
}

// Validate reports the first setting that would make a run impossible.
func (c Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("config: baseUrl is empty")
	case c.OutputDir == "":
		return errors.New("config: outputDir is empty")
	case c.PageLoadTimeout <= 0:
		return errors.New("config: pageLoadTimeout must be positive")
	case c.WaitTimeout <= 0:
		return errors.New("config: waitTimeout must be positive")
	case c.PollInterval <= 0:
		return errors.New("config: pollInterval must be positive")
	}
	return nil
}

// Load builds the effective configuration: defaults, then the optional file
// at path, then its "<name>.local.<ext>" sibling, then ECOURTS_* environment
// variables (a .env file in the working directory is read first). Missing
// files are skipped.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if path != "" {
		for _, p := range []string{path, localPath(path)} {
			fromFile, ok, err := readFile(p)
			if err != nil {
				return cfg, err
			}
			if !ok {
				continue
			}
			if err := mergo.Merge(&cfg, fromFile, mergo.WithOverride); err != nil {
				return cfg, fmt.Errorf("merge %s: %w", p, err)
			}
			slog.Debug("merged config file", "path", p)
		}
	}

	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func readFile(path string) (Config, bool, error) {
	var out Config
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return out, false, nil
	}
	if err != nil {
		return out, false, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return out, false, nil
	}
	if err := json5.Unmarshal(data, &out); err != nil {
		return out, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, true, nil
}

// localPath turns "dir/ecourts.json5" into "dir/ecourts.local.json5".
func localPath(path string) string {
	ext := filepath.Ext(path)
	return path[:len(path)-len(ext)] + ".local" + ext
}

func applyEnv(cfg *Config) {
	cfg.BaseURL = getEnv("ECOURTS_BASE_URL", cfg.BaseURL)
	cfg.OutputDir = getEnv("ECOURTS_OUTPUT_DIR", cfg.OutputDir)
	cfg.ChromePath = getEnv("ECOURTS_CHROME_PATH", cfg.ChromePath)
	cfg.Court.State = getEnv("ECOURTS_STATE", cfg.Court.State)
	cfg.Court.District = getEnv("ECOURTS_DISTRICT", cfg.Court.District)
	cfg.Court.Complex = getEnv("ECOURTS_COMPLEX", cfg.Court.Complex)
	cfg.Headless = getEnvBool("ECOURTS_HEADLESS", cfg.Headless)
}

func getEnv(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
