// Package config loads viewer settings from YAML and command-line flags.
package config

import (
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var defaultYAML []byte

type Config struct {
	Map        string       `yaml:"map"`
	Window     WindowConfig `yaml:"window"`
	Background YAMLColor    `yaml:"background"`
	Scroll     ScrollConfig `yaml:"scroll"`
	Watch      bool         `yaml:"watch"`
	Locale     string       `yaml:"locale"`
	CacheSize  int          `yaml:"cache_size"`
	InfoBar    bool         `yaml:"info_bar"`
	Debug      bool         `yaml:"debug"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type ScrollConfig struct {
	WheelSpeed float64 `yaml:"wheel_speed"`
}

// Default returns the built-in settings.
func Default() (Config, error) {
	var c Config
	if err := yaml.Unmarshal(defaultYAML, &c); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal defaults: %w", err)
	}
	return c, nil
}

// Load reads path on top of the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	c, err := Default()
	if err != nil {
		return Config{}, err
	}
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return c, nil
}

var locales = []string{"en", "fr"}

func (c Config) Validate() error {
	var errs []error
	if c.Map == "" {
		errs = append(errs, errors.New("no map file given"))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Scroll.WheelSpeed <= 0 {
		errs = append(errs, fmt.Errorf("scroll.wheel_speed %v must be positive", c.Scroll.WheelSpeed))
	}
	if c.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("cache_size %d must be positive", c.CacheSize))
	}
	known := false
	for _, l := range locales {
		known = known || c.Locale == l
	}
	if !known {
		errs = append(errs, fmt.Errorf("unknown locale %q (want one of %s)", c.Locale, strings.Join(locales, ", ")))
	}
	if c.Background.Color == nil {
		errs = append(errs, errors.New("background colour is missing"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Options is the outcome of command-line parsing.
type Options struct {
	Config
	// NoWindow prints the report and exits without opening a window.
	NoWindow bool
}

// Parse reads flags from args (without the program name), loads the config
// file they name and applies the flags on top of it.
func Parse(args []string, stderr io.Writer) (Options, error) {
	fs := flag.NewFlagSet("tmxviewer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: tmxviewer [flags] [map.tmx]")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "YAML settings file")
	mapPath := fs.String("map", "", "TMX map to open")
	watch := fs.Bool("watch", false, "reload the map when it changes on disk")
	locale := fs.String("locale", "", "report language (en, fr)")
	noWindow := fs.Bool("no-window", false, "print the report and exit")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}
	if fs.NArg() > 1 {
		return Options{}, fmt.Errorf("config: expected at most one map argument, got %d", fs.NArg())
	}

	c, err := Load(*configPath)
	if err != nil {
		return Options{}, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["map"] {
		c.Map = *mapPath
	}
	if fs.NArg() == 1 {
		c.Map = fs.Arg(0)
	}
	if set["watch"] {
		c.Watch = *watch
	}
	if set["locale"] {
		c.Locale = *locale
	}
	if set["debug"] {
		c.Debug = *debug
	}

	if err := c.Validate(); err != nil {
		return Options{}, err
	}
	return Options{Config: c, NoWindow: *noWindow}, nil
}

// YAMLColor is a colour written as "#RRGGBB" or "#RRGGBBAA".
type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	var rgba [4]uint8
	rgba[3] = 0xff
	for i := 0; i < len(s)/2; i++ {
		v, err := parse(i * 2)
		if err != nil {
			return fmt.Errorf("invalid color format: %s", value.Value)
		}
		rgba[i] = v
	}

	c.Color = color.NRGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	return nil
}
