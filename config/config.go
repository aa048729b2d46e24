package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/kuredoro/snake/core"
	"github.com/kuredoro/snake/engine"
)

const envPrefix = "SNAKE_"

type Config struct {
	Width    int
	Height   int
	CellSize int
	TickRate int

	StartX int
	StartY int
	Seed   int64

	Mode        string
	FixedLength int
	Placement   string

	Menu     bool
	Spectate bool

	LogLevel string
	LogFile  string
}

// Default mirrors the classic setup: a 640x480 window of 20px cells is a
// 32x24 grid, ticking 10 times a second. In a terminal a cell is two
// columns wide so it looks roughly square.
func Default() Config {
	return Config{
		Width:       32,
		Height:      24,
		CellSize:    2,
		TickRate:    10,
		StartX:      1,
		StartY:      1,
		Mode:        engine.ModeGrow.String(),
		FixedLength: engine.DefaultFixedLength,
		Placement:   engine.PlaceAnywhere.String(),
		Menu:        true,
		LogLevel:    zerolog.InfoLevel.String(),
	}
}

func (c *Config) RegisterFlags(flags *flag.FlagSet) {
	flags.IntVar(&c.Width, "width", c.Width, "grid width in cells")
	flags.IntVar(&c.Height, "height", c.Height, "grid height in cells")
	flags.IntVar(&c.CellSize, "cell", c.CellSize, "terminal columns per cell")
	flags.IntVar(&c.TickRate, "rate", c.TickRate, "ticks per second")
	flags.IntVar(&c.StartX, "start-x", c.StartX, "start column")
	flags.IntVar(&c.StartY, "start-y", c.StartY, "start row")
	flags.Int64Var(&c.Seed, "seed", c.Seed, "random seed, 0 picks one from the clock")
	flags.StringVar(&c.Mode, "mode", c.Mode, `"grow" to grow on eating, "fixed" to keep a fixed length`)
	flags.IntVar(&c.FixedLength, "length", c.FixedLength, "snake length in fixed mode")
	flags.StringVar(&c.Placement, "apple", c.Placement, `apple placement: "anywhere" or "avoid-body"`)
	flags.BoolVar(&c.Menu, "menu", c.Menu, "show the start menu")
	flags.BoolVar(&c.Spectate, "spectate", c.Spectate, "broadcast the game to spectators on the LAN")
	flags.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level")
	flags.StringVar(&c.LogFile, "log", c.LogFile, "log file, logs are discarded if empty")
}

// LoadEnv reads path as a dotenv file, if it exists, and then applies any
// SNAKE_* variables from the environment on top of c.
func (c *Config) LoadEnv(path string) error {
	if path != "" {
		err := godotenv.Load(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %v", path, err)
		}
	}

	var merr error
	ints := map[string]*int{
		"WIDTH":        &c.Width,
		"HEIGHT":       &c.Height,
		"CELL":         &c.CellSize,
		"RATE":         &c.TickRate,
		"START_X":      &c.StartX,
		"START_Y":      &c.StartY,
		"FIXED_LENGTH": &c.FixedLength,
	}
	for name, dst := range ints {
		raw, ok := os.LookupEnv(envPrefix + name)
		if !ok {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			merr = multierror.Append(merr, &core.ConfigError{Field: envPrefix + name, Err: err})
			continue
		}
		*dst = v
	}

	if raw, ok := os.LookupEnv(envPrefix + "SEED"); ok {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			merr = multierror.Append(merr, &core.ConfigError{Field: envPrefix + "SEED", Err: err})
		} else {
			c.Seed = v
		}
	}

	strs := map[string]*string{
		"MODE":      &c.Mode,
		"APPLE":     &c.Placement,
		"LOG_LEVEL": &c.LogLevel,
		"LOG":       &c.LogFile,
	}
	for name, dst := range strs {
		if raw, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = raw
		}
	}

	bools := map[string]*bool{
		"MENU":     &c.Menu,
		"SPECTATE": &c.Spectate,
	}
	for name, dst := range bools {
		raw, ok := os.LookupEnv(envPrefix + name)
		if !ok {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			merr = multierror.Append(merr, &core.ConfigError{Field: envPrefix + name, Err: err})
			continue
		}
		*dst = v
	}

	return merr
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var merr error

	positive := []struct {
		field string
		v     int
	}{
		{"width", c.Width},
		{"height", c.Height},
		{"cell", c.CellSize},
		{"rate", c.TickRate},
	}
	for _, p := range positive {
		if p.v <= 0 {
			merr = multierror.Append(merr, &core.ConfigError{Field: p.field, Err: core.ErrNonPositive})
		}
	}

	mode, err := engine.ParseMode(c.Mode)
	if err != nil {
		merr = multierror.Append(merr, &core.ConfigError{Field: "mode", Err: core.ErrUnknownValue})
	}
	if mode == engine.ModeFixedLength {
		switch {
		case c.FixedLength <= 0:
			merr = multierror.Append(merr, &core.ConfigError{Field: "length", Err: core.ErrNonPositive})
		case c.Width > 0 && c.Height > 0 && c.FixedLength > c.Width*c.Height:
			merr = multierror.Append(merr, &core.ConfigError{Field: "length", Err: core.ErrOutOfRange})
		}
	}

	if _, err := engine.ParsePlacement(c.Placement); err != nil {
		merr = multierror.Append(merr, &core.ConfigError{Field: "apple", Err: core.ErrUnknownValue})
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		merr = multierror.Append(merr, &core.ConfigError{Field: "log-level", Err: core.ErrUnknownValue})
	}

	return merr
}

func (c Config) Grid() (core.Grid, error) {
	return core.NewGrid(c.Width, c.Height, c.CellSize)
}

// SessionOptions assumes c passed Validate.
func (c Config) SessionOptions() engine.Options {
	opts := engine.DefaultOptions()
	opts.Start = core.Coord{X: c.StartX, Y: c.StartY}
	opts.FixedLength = c.FixedLength

	if mode, err := engine.ParseMode(c.Mode); err == nil {
		opts.Mode = mode
	}
	if placement, err := engine.ParsePlacement(c.Placement); err == nil {
		opts.Placement = placement
	}

	return opts
}

func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
