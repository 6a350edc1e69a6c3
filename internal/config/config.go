package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/limaJavier/coursescheduler/pkg/model"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load, e.g. SCHEDULER_SOLVER_TIMEOUT
const EnvPrefix = "SCHEDULER"

// DefaultFile is looked up next to the executable when no configuration file is given
const DefaultFile = "config.json"

type Config struct {
	Calendar    CalendarConfig    `mapstructure:"calendar"`
	Constraints ConstraintsConfig `mapstructure:"constraints"`
	Solver      SolverConfig      `mapstructure:"solver"`
	Model       ModelConfig       `mapstructure:"model"`
	Report      ReportConfig      `mapstructure:"report"`
	Log         LogConfig         `mapstructure:"log"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// CalendarConfig defines the slot universe
type CalendarConfig struct {
	Weeks        int `mapstructure:"weeks"`
	Days         int `mapstructure:"days"`
	Periods      int `mapstructure:"periods"`
	HoursPerSlot int `mapstructure:"hours_per_slot"`
}

// ConstraintsConfig holds the default conflict dimensions
type ConstraintsConfig struct {
	Class   bool `mapstructure:"class"`
	Teacher bool `mapstructure:"teacher"`
	Room    bool `mapstructure:"room"`
}

type SolverConfig struct {
	Name    string            `mapstructure:"name"`
	Timeout time.Duration     `mapstructure:"timeout"`
	Paths   map[string]string `mapstructure:"paths"` // Executable per external solver
}

type ModelConfig struct {
	SizeThreshold uint64 `mapstructure:"size_threshold"`
}

type ReportConfig struct {
	Top  int    `mapstructure:"top"`
	Font string `mapstructure:"font"` // TrueType font for PDF reports, required for text outside Latin-1
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"` // Prometheus textfile written after each run, empty disables it
}

// Load merges defaults, the configuration file, .env and SCHEDULER_* environment variables, later sources winning.
// An empty path falls back to config.json next to the executable, which may be absent
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	explicit := path != ""
	if !explicit {
		path = defaultPath()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if explicit || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
				return nil, fmt.Errorf("cannot read configuration file %v: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("cannot decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("calendar.weeks", 16)
	v.SetDefault("calendar.days", 5)
	v.SetDefault("calendar.periods", 6)
	v.SetDefault("calendar.hours_per_slot", 2)

	v.SetDefault("constraints.class", true)
	v.SetDefault("constraints.teacher", false)
	v.SetDefault("constraints.room", false)

	v.SetDefault("solver.name", "gophersat")
	v.SetDefault("solver.timeout", 10*time.Minute)
	v.SetDefault("solver.paths", map[string]string{})

	v.SetDefault("model.size_threshold", 200000)
	v.SetDefault("report.top", 5)
	v.SetDefault("report.font", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("metrics.textfile", "")
}

func defaultPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	path := filepath.Join(filepath.Dir(execPath), DefaultFile)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func (cfg *Config) Validate() error {
	if _, err := cfg.Calendar.Calendar(); err != nil {
		return fmt.Errorf("invalid calendar configuration: %w", err)
	}
	if cfg.Calendar.HoursPerSlot < 1 {
		return fmt.Errorf("calendar.hours_per_slot must be positive: %d", cfg.Calendar.HoursPerSlot)
	}
	if cfg.Solver.Timeout <= 0 {
		return fmt.Errorf("solver.timeout must be positive: %v", cfg.Solver.Timeout)
	}
	if cfg.Report.Top < 0 {
		return fmt.Errorf("report.top cannot be negative: %d", cfg.Report.Top)
	}
	if format := cfg.Log.Format; format != "json" && format != "console" {
		return fmt.Errorf("log.format must be json or console: %v", format)
	}
	return nil
}

func (calendar CalendarConfig) Calendar() (model.Calendar, error) {
	return model.NewCalendar(calendar.Weeks, calendar.Days, calendar.Periods)
}

func (constraints ConstraintsConfig) Toggle() model.ConstraintToggle {
	var toggle model.ConstraintToggle
	if constraints.Class {
		toggle = toggle.With(model.ClassDimension)
	}
	if constraints.Teacher {
		toggle = toggle.With(model.TeacherDimension)
	}
	if constraints.Room {
		toggle = toggle.With(model.RoomDimension)
	}
	return toggle
}
