package cmd

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/replay-director/replay-director/director"
	"github.com/replay-director/replay-director/director/actuate"
)

// envPrefix namespaces every environment override.
const envPrefix = "REPLAY_DIRECTOR_"

// FileConfig is the full config file structure.
// All sections must be listed to satisfy KnownFields(true) strict parsing.
type FileConfig struct {
	Listen       string          `yaml:"listen" env:"LISTEN"`         // GSI webhook and control address
	RelayURL     string          `yaml:"relay_url" env:"RELAY_URL"`   // optional ws:// feed from the POV PC
	Journal      string          `yaml:"journal" env:"JOURNAL"`       // optional SQLite journal path
	OTelEndpoint string          `yaml:"otel_endpoint" env:"OTEL_ENDPOINT"`
	Scheduler    SchedulerConfig `yaml:"scheduler" envPrefix:"SCHEDULER_"`
	Actuator     actuate.Config  `yaml:"actuator" envPrefix:"ACTUATOR_"`
}

// SchedulerConfig mirrors director.Config with file and env tags.
type SchedulerConfig struct {
	Delay        time.Duration `yaml:"delay" env:"DELAY"`
	Tick         time.Duration `yaml:"tick" env:"TICK"`
	PriorityMode string        `yaml:"priority_mode" env:"PRIORITY_MODE"`
	ReadyPolicy  string        `yaml:"ready_policy" env:"READY_POLICY"`
}

func defaultFileConfig() FileConfig {
	d := director.DefaultConfig()
	return FileConfig{
		Listen: ":3000",
		Scheduler: SchedulerConfig{
			Delay:        d.Delay,
			Tick:         d.Tick,
			PriorityMode: d.PriorityMode,
			ReadyPolicy:  d.ReadyPolicy,
		},
		Actuator: actuate.DefaultConfig(),
	}
}

// loadConfig layers defaults, the YAML file at path (if any) and environment
// overrides. A nil environ reads the process environment.
func loadConfig(path string, environ map[string]string) (FileConfig, error) {
	cfg := defaultFileConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		// Strict field checking: typos must cause errors
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix, Environment: environ}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Director converts the scheduler section.
func (c FileConfig) Director() director.Config {
	return director.Config{
		Delay:        c.Scheduler.Delay,
		Tick:         c.Scheduler.Tick,
		PriorityMode: c.Scheduler.PriorityMode,
		ReadyPolicy:  c.Scheduler.ReadyPolicy,
	}
}

// Validate checks the scheduler and actuator sections.
func (c FileConfig) Validate() error {
	if err := c.Director().Validate(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	if err := c.Actuator.Validate(); err != nil {
		return fmt.Errorf("actuator: %w", err)
	}
	return nil
}

// schedulerFlags are shared by observe and simulate.
type schedulerFlags struct {
	delay        time.Duration
	tick         time.Duration
	priorityMode string
	readyPolicy  string
}

func (f *schedulerFlags) register(cmd *cobra.Command) {
	d := director.DefaultConfig()
	cmd.Flags().DurationVar(&f.delay, "delay", d.Delay, "Broadcast delay added to every switch")
	cmd.Flags().DurationVar(&f.tick, "tick", d.Tick, "Selection tick cadence")
	cmd.Flags().StringVar(&f.priorityMode, "priority-mode", d.PriorityMode, "Priority evaluation (creation, live)")
	cmd.Flags().StringVar(&f.readyPolicy, "ready-policy", d.ReadyPolicy, "Ready-but-unselected switches (discard, retain)")
}

// apply overrides cfg with the flags the user actually set, so file and env
// values survive flag defaults.
func (f *schedulerFlags) apply(cmd *cobra.Command, cfg *FileConfig) {
	if cmd.Flags().Changed("delay") {
		cfg.Scheduler.Delay = f.delay
	}
	if cmd.Flags().Changed("tick") {
		cfg.Scheduler.Tick = f.tick
	}
	if cmd.Flags().Changed("priority-mode") {
		cfg.Scheduler.PriorityMode = f.priorityMode
	}
	if cmd.Flags().Changed("ready-policy") {
		cfg.Scheduler.ReadyPolicy = f.readyPolicy
	}
}
