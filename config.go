package ledsnake

import (
	"encoding"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"libdb.so/ledsnake/snake"
)

// Config is the configuration for the snake game.
type Config struct {
	// Interval is how long each frame is shown for. It is also the tick
	// length of the game.
	Interval Duration `toml:"interval" yaml:"interval"`
	// Start is the initial position of the snake's head.
	Start *Position `toml:"start" yaml:"start"`
	// MaxLength is the longest the snake may grow.
	MaxLength int `toml:"max_length" yaml:"max_length"`
	// Backend is the display and input backend to use.
	Backend Backend `toml:"backend" yaml:"backend"`
	// Trace is an optional path to write a CSV trace of every tick to.
	Trace string `toml:"trace" yaml:"trace"`

	Serial   SerialConfig   `toml:"serial" yaml:"serial"`
	Terminal TerminalConfig `toml:"terminal" yaml:"terminal"`
}

// Position is a grid position in the configuration.
type Position struct {
	X int `toml:"x" yaml:"x"`
	Y int `toml:"y" yaml:"y"`
}

// GridPosition converts the position to a snake.GridPosition. The position
// must have been validated.
func (p Position) GridPosition() snake.GridPosition {
	return snake.Pos(int8(p.X), int8(p.Y))
}

// Backend is the kind of display and input to drive.
type Backend string

const (
	// TerminalBackend simulates the LED matrix and buttons in the terminal.
	TerminalBackend Backend = "terminal"
	// SerialBackend drives a device running the ledserial firmware.
	SerialBackend Backend = "serial"
)

// SerialConfig is the configuration for the serial backend.
type SerialConfig struct {
	// Device is the path to the device file for the board.
	// This is usually /dev/ttyACM0.
	Device string `toml:"device" yaml:"device"`
	// Baud is the baud rate for the serial connection.
	Baud int `toml:"baud" yaml:"baud"`
	// AckTimeout is how long to wait for the device to acknowledge a packet
	// on top of the frame's own duration.
	AckTimeout Duration `toml:"ack_timeout" yaml:"ack_timeout"`
}

// TerminalConfig is the configuration for the terminal backend.
type TerminalConfig struct {
	// LeftKey is the key acting as button A.
	LeftKey string `toml:"left_key" yaml:"left_key"`
	// RightKey is the key acting as button B.
	RightKey string `toml:"right_key" yaml:"right_key"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Interval == 0 {
		c.Interval = Duration(100 * time.Millisecond)
	}
	if c.Start == nil {
		c.Start = &Position{X: 2, Y: 2}
	}
	if c.MaxLength == 0 {
		c.MaxLength = 5
	}
	if c.Backend == "" {
		c.Backend = TerminalBackend
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = 115200
	}
	if c.Serial.AckTimeout == 0 {
		c.Serial.AckTimeout = Duration(time.Second)
	}
	if c.Terminal.LeftKey == "" {
		c.Terminal.LeftKey = "a"
	}
	if c.Terminal.RightKey == "" {
		c.Terminal.RightKey = "b"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}

	if c.Start == nil {
		return errors.New("no start position")
	}
	if c.Start.X < 0 || c.Start.X >= snake.Dim || c.Start.Y < 0 || c.Start.Y >= snake.Dim {
		return fmt.Errorf("start position (%d,%d) is off the %dx%d grid",
			c.Start.X, c.Start.Y, snake.Dim, snake.Dim)
	}

	if c.MaxLength < 1 || c.MaxLength > snake.Capacity {
		return fmt.Errorf("max_length %d not in [1, %d]", c.MaxLength, snake.Capacity)
	}

	switch c.Backend {
	case TerminalBackend:
		if utf8.RuneCountInString(c.Terminal.LeftKey) != 1 {
			return fmt.Errorf("left_key %q must be a single character", c.Terminal.LeftKey)
		}
		if utf8.RuneCountInString(c.Terminal.RightKey) != 1 {
			return fmt.Errorf("right_key %q must be a single character", c.Terminal.RightKey)
		}
		if c.Terminal.LeftKey == c.Terminal.RightKey {
			return errors.New("left_key and right_key must differ")
		}
	case SerialBackend:
		if c.Serial.Device == "" {
			return errors.New("no serial device configured")
		}
		if c.Serial.Baud <= 0 {
			return fmt.Errorf("invalid baud rate %d", c.Serial.Baud)
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	return nil
}

// Duration is a duration that can be parsed from TOML and YAML.
type Duration time.Duration

var (
	_ encoding.TextUnmarshaler = (*Duration)(nil)
	_ encoding.TextMarshaler   = (*Duration)(nil)
	_ yaml.Unmarshaler         = (*Duration)(nil)
)

func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// String returns the duration formatted like time.Duration.
func (d Duration) String() string { return time.Duration(d).String() }

// ParseConfig parses a TOML configuration from a reader. Missing values are
// set to their defaults.
func ParseConfig(r io.Reader) (*Config, error) {
	var config Config
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, err
	}
	config.applyDefaults()
	return &config, nil
}

// ParseYAMLConfig parses a YAML configuration from a reader. Missing values
// are set to their defaults.
func ParseYAMLConfig(r io.Reader) (*Config, error) {
	var config Config
	if err := yaml.NewDecoder(r).Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	config.applyDefaults()
	return &config, nil
}

// ReadConfigFile reads the configuration file at path. Files ending in .yaml
// or .yml are parsed as YAML, everything else as TOML.
func ReadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open config file")
	}
	defer f.Close()

	var cfg *Config
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		cfg, err = ParseYAMLConfig(f)
	default:
		cfg, err = ParseConfig(f)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return cfg, nil
}
