package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/integrii/flaggy"
)

//Config is the runtime configuration, defaults come from the environment and flags override them
type Config struct {
	Width       uint32        `env:"TORUSLIFE_WIDTH" envDefault:"64"`
	Height      uint32        `env:"TORUSLIFE_HEIGHT" envDefault:"32"`
	Interval    time.Duration `env:"TORUSLIFE_INTERVAL" envDefault:"100ms"`
	MaxSteps    int           `env:"TORUSLIFE_MAX_STEPS" envDefault:"1000"`
	Seed        uint64        `env:"TORUSLIFE_SEED" envDefault:"0"`
	Template    string        `env:"TORUSLIFE_TEMPLATE" envDefault:"sample"`
	Interactive bool          `env:"TORUSLIFE_INTERACTIVE" envDefault:"false"`
	RandomData  bool          `env:"TORUSLIFE_RANDOM" envDefault:"false"`
}

//ParseEnv loads configuration from environment variables
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

//Load reads the environment then applies command line flags from args
func Load(args []string, templates []string) (*Config, error) {
	var c Config
	if err := ParseEnv(&c); err != nil {
		return nil, err
	}
	p := newParser(&c, templates)
	if err := p.ParseArgs(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	if err := c.Validate(templates); err != nil {
		return nil, err
	}
	return &c, nil
}

func newParser(c *Config, templates []string) *flaggy.Parser {
	p := flaggy.NewParser("toruslife")
	p.Description = "Conway's Game of Life on a wraparound grid"
	p.ShowHelpOnUnexpected = true
	p.UInt32(&c.Width, "x", "width", "Width of a simulation field")
	p.UInt32(&c.Height, "y", "height", "Height of a simulation field")
	p.Duration(&c.Interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	p.Int(&c.MaxSteps, "s", "maxSteps", "Limit the simulation to maxSteps, 0 means no limit")
	p.UInt64(&c.Seed, "", "seed", "Seed for random data, 0 picks a random seed")
	p.Bool(&c.Interactive, "n", "interactive", "Start interactive mode")
	p.Bool(&c.RandomData, "r", "random", "Settle with random data")
	p.String(&c.Template, "t", "template", "Template to settle ["+strings.Join(templates, "|")+"]")
	return p
}

//Validate checks the configuration against the known template names
func (c *Config) Validate(templates []string) error {
	if c.Width == 0 || c.Height == 0 {
		return fmt.Errorf("invalid dimension %vx%v: width and height must be positive", c.Width, c.Height)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("invalid max steps %v", c.MaxSteps)
	}
	if c.Interval < 0 {
		return fmt.Errorf("invalid interval %v", c.Interval)
	}
	if c.RandomData {
		return nil
	}
	for _, t := range templates {
		if t == c.Template {
			return nil
		}
	}
	return fmt.Errorf("unknown template %q", c.Template)
}

//Exitf writes a formatted error message to stderr and exits with code 1
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
