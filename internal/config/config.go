// Package config loads flowerfield settings from defaults, an optional
// config file, FLOWERFIELD_* environment variables and command flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rook-computer/flowerfield/internal/field"
	"github.com/rook-computer/flowerfield/internal/logging"
	"github.com/rook-computer/flowerfield/internal/render"
)

const EnvPrefix = "FLOWERFIELD"

// Env names of the most commonly set options.
const (
	EnvListenAddr = "FLOWERFIELD_HTTP_LISTEN"
	EnvDevMode    = "FLOWERFIELD_HTTP_DEV"
	EnvLogLevel   = "FLOWERFIELD_LOG_LEVEL"
)

// HTTP contains settings for running the HTTP server.
type HTTP struct {
	Listen string `mapstructure:"listen" json:"listen"`
	// Dev enables permissive CORS for UI development.
	Dev bool `mapstructure:"dev" json:"dev"`
	// PublicURL is used for share links. When empty it is derived from the request.
	PublicURL string `mapstructure:"public_url" json:"public_url"`
	// StaticDir overrides the embedded web UI.
	StaticDir string `mapstructure:"static_dir" json:"static_dir"`
}

type Log struct {
	Level string `mapstructure:"level" json:"level"`
	File  string `mapstructure:"file" json:"file"`
}

type Render struct {
	// Seed fixes the first pass. Zero picks a random seed.
	Seed    uint64 `mapstructure:"seed" json:"seed"`
	Caption bool   `mapstructure:"caption" json:"caption"`
	Width   int    `mapstructure:"width" json:"width"`
	Height  int    `mapstructure:"height" json:"height"`
	Output  string `mapstructure:"output" json:"output"`
}

type Display struct {
	Device   string `mapstructure:"device" json:"device"`
	Keyboard bool   `mapstructure:"keyboard" json:"keyboard"`
}

type Config struct {
	HTTP    HTTP         `mapstructure:"http" json:"http"`
	Log     Log          `mapstructure:"log" json:"log"`
	Render  Render       `mapstructure:"render" json:"render"`
	Display Display      `mapstructure:"display" json:"display"`
	Field   field.Config `mapstructure:"field" json:"field"`
}

func DefaultConfig() Config {
	return Config{
		HTTP:    HTTP{Listen: ":8080"},
		Log:     Log{Level: "info"},
		Render:  Render{Width: render.CanvasWidth, Height: render.CanvasHeight, Output: "flowers.png"},
		Display: Display{Device: "/dev/fb0", Keyboard: true},
		Field:   field.DefaultConfig(),
	}
}

// flagKeys are config keys that commands may expose as flags with the same name.
var flagKeys = []string{
	"http.listen", "http.dev", "http.public_url", "http.static_dir",
	"log.level", "log.file",
	"render.seed", "render.caption", "render.width", "render.height", "render.output",
	"display.device", "display.keyboard",
	"field.variation",
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("http.listen", d.HTTP.Listen)
	v.SetDefault("http.dev", d.HTTP.Dev)
	v.SetDefault("http.public_url", d.HTTP.PublicURL)
	v.SetDefault("http.static_dir", d.HTTP.StaticDir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("render.seed", d.Render.Seed)
	v.SetDefault("render.caption", d.Render.Caption)
	v.SetDefault("render.width", d.Render.Width)
	v.SetDefault("render.height", d.Render.Height)
	v.SetDefault("render.output", d.Render.Output)
	v.SetDefault("display.device", d.Display.Device)
	v.SetDefault("display.keyboard", d.Display.Keyboard)

	f := d.Field
	ranges := map[string]field.Range{
		"num_flowers":  f.NumFlowers,
		"flower_scale": f.FlowerScale,
		"petal_width":  f.PetalWidth,
		"petal_height": f.PetalHeight,
		"stem_height":  f.StemHeight,
		"petal_count":  f.PetalCount,
		"leaf_size":    f.LeafSize,
		"stem_bend":    f.StemBend,
	}
	for name, r := range ranges {
		v.SetDefault("field."+name+".min", r.Min)
		v.SetDefault("field."+name+".max", r.Max)
	}
	v.SetDefault("field.variation", string(f.Variation))
	v.SetDefault("field.toggles.use_random_colors", f.Toggles.UseRandomColors)
	v.SetDefault("field.toggles.random_bend", f.Toggles.RandomBend)
	v.SetDefault("field.toggles.random_leaves", f.Toggles.RandomLeaves)
	v.SetDefault("field.toggles.random_position", f.Toggles.RandomPosition)
	v.SetDefault("field.toggles.random_size", f.Toggles.RandomSize)
	v.SetDefault("field.toggles.exact_petal_count", f.Toggles.ExactPetalCount)
}

// Load builds a Config. cmd may be nil; configFile may be empty.
func Load(cmd *cobra.Command, configFile string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		for _, key := range flagKeys {
			if f := cmd.Flags().Lookup(key); f != nil {
				_ = v.BindPFlag(key, f)
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	}

	conf := DefaultConfig()
	if v.IsSet("field.petal_colors") {
		conf.Field.PetalColors = nil
	}
	if err := v.Unmarshal(&conf); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.HTTP.Listen) == "" {
		errs = append(errs, errors.New("http.listen must not be empty"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		errs = append(errs, fmt.Errorf("render size must be positive (got %dx%d)", c.Render.Width, c.Render.Height))
	}
	if err := c.Field.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("field: %w", err))
	}
	return errors.Join(errs...)
}
