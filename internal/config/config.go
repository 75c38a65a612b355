// Package config loads the typed configuration from a .tonnetz file, the
// TONNETZ_* environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ingyamilmolinar/tonnetz/core/engine"
	"github.com/ingyamilmolinar/tonnetz/core/input"
	"github.com/ingyamilmolinar/tonnetz/core/pitch"
	"github.com/ingyamilmolinar/tonnetz/core/selection"
	"github.com/ingyamilmolinar/tonnetz/core/viewport"
	game_log "github.com/ingyamilmolinar/tonnetz/internal/log"
)

var ErrInvalid = errors.New("invalid configuration")

var envReplacer = strings.NewReplacer("-", "_")

// Keys as they appear in the config file and, upper-cased with a TONNETZ_
// prefix, in the environment.
const (
	KeyRoot           = "root"
	KeyQInterval      = "q-interval"
	KeyRInterval      = "r-interval"
	KeySingleOctave   = "single-octave"
	KeyCellSize       = "cell-size"
	KeyZoomRange      = "zoom-range"
	KeyGridExtent     = "grid-extent"
	KeyBufferCells    = "buffer-cells"
	KeyVisibility     = "visibility-buffer"
	KeyDragThreshold  = "drag-threshold"
	KeyExpandDebounce = "expand-debounce"
	KeyDragThrottle   = "drag-throttle"
	KeyDeriveDebounce = "derive-debounce"
	KeyLogLevel       = "log-level"
	KeyMIDIPort       = "midi-port"
	KeyMIDIChannel    = "midi-channel"
	KeyAudio          = "audio"
	KeyVolume         = "volume"
	KeyWidth          = "width"
	KeyHeight         = "height"
)

type Config struct {
	RootNote         string
	QInterval        int
	RInterval        int
	SingleOctave     bool
	CellSize         float64
	ZoomRange        float64
	GridExtent       int
	BufferCells      int
	VisibilityBuffer float64
	DragThreshold    float64
	ExpandDebounce   time.Duration
	DragThrottle     time.Duration
	DeriveDebounce   time.Duration
	LogLevel         string
	MIDIPort         string
	MIDIChannel      int
	Audio            bool
	Volume           float64
	Width            int
	Height           int
}

// Default is the Neo-Riemannian tonnetz with the audio engine on.
func Default() Config {
	return Config{
		RootNote:         "C",
		QInterval:        7,
		RInterval:        4,
		SingleOctave:     true,
		CellSize:         60,
		ZoomRange:        viewport.DefaultZoomRange,
		GridExtent:       viewport.DefaultGridExtent,
		BufferCells:      viewport.DefaultBufferCells,
		VisibilityBuffer: engine.DefaultVisibilityBuffer,
		DragThreshold:    input.DefaultDragThreshold,
		ExpandDebounce:   viewport.DefaultDebounce,
		DragThrottle:     selection.DefaultDragThrottle,
		DeriveDebounce:   selection.DefaultDeriveDebounce,
		LogLevel:         "info",
		Audio:            true,
		Volume:           0.3,
		Width:            1024,
		Height:           768,
	}
}

func (c Config) Validate() error {
	if _, err := pitch.PitchOf(c.RootNote); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, KeyRoot, err)
	}
	if c.QInterval == 0 && c.RInterval == 0 {
		return fmt.Errorf("%w: q and r intervals are both zero", ErrInvalid)
	}
	if c.CellSize <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalid, KeyCellSize)
	}
	if c.ZoomRange < 1 {
		return fmt.Errorf("%w: %s must be at least 1", ErrInvalid, KeyZoomRange)
	}
	if c.GridExtent <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalid, KeyGridExtent)
	}
	if c.BufferCells < 0 || c.VisibilityBuffer < 0 || c.DragThreshold < 0 {
		return fmt.Errorf("%w: buffers and thresholds cannot be negative", ErrInvalid)
	}
	if c.ExpandDebounce < 0 || c.DragThrottle < 0 || c.DeriveDebounce < 0 {
		return fmt.Errorf("%w: durations cannot be negative", ErrInvalid)
	}
	if _, err := game_log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, KeyLogLevel, err)
	}
	if c.MIDIChannel < 0 || c.MIDIChannel > 15 {
		return fmt.Errorf("%w: %s must be 0-15", ErrInvalid, KeyMIDIChannel)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("%w: %s must be within [0,1]", ErrInvalid, KeyVolume)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: window size must be positive", ErrInvalid)
	}
	return nil
}

// NewViper returns a viper instance with every default registered, the
// .tonnetz config name and TONNETZ_* environment lookup. Callers may bind
// flags into it before Load.
func NewViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault(KeyRoot, d.RootNote)
	v.SetDefault(KeyQInterval, d.QInterval)
	v.SetDefault(KeyRInterval, d.RInterval)
	v.SetDefault(KeySingleOctave, d.SingleOctave)
	v.SetDefault(KeyCellSize, d.CellSize)
	v.SetDefault(KeyZoomRange, d.ZoomRange)
	v.SetDefault(KeyGridExtent, d.GridExtent)
	v.SetDefault(KeyBufferCells, d.BufferCells)
	v.SetDefault(KeyVisibility, d.VisibilityBuffer)
	v.SetDefault(KeyDragThreshold, d.DragThreshold)
	v.SetDefault(KeyExpandDebounce, d.ExpandDebounce)
	v.SetDefault(KeyDragThrottle, d.DragThrottle)
	v.SetDefault(KeyDeriveDebounce, d.DeriveDebounce)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyMIDIPort, d.MIDIPort)
	v.SetDefault(KeyMIDIChannel, d.MIDIChannel)
	v.SetDefault(KeyAudio, d.Audio)
	v.SetDefault(KeyVolume, d.Volume)
	v.SetDefault(KeyWidth, d.Width)
	v.SetDefault(KeyHeight, d.Height)

	v.SetConfigName(".tonnetz") // .yaml is implicit
	v.SetEnvPrefix("TONNETZ")
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()
	return v
}

// Load reads path when given, otherwise looks for .tonnetz in
// $TONNETZ_CONFIG_PATH and the working directory. A missing file is not an
// error; a malformed one is.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		if override := os.Getenv("TONNETZ_CONFIG_PATH"); override != "" {
			v.AddConfigPath(override)
		}
		v.AddConfigPath("./")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}
	c := Config{
		RootNote:         v.GetString(KeyRoot),
		QInterval:        v.GetInt(KeyQInterval),
		RInterval:        v.GetInt(KeyRInterval),
		SingleOctave:     v.GetBool(KeySingleOctave),
		CellSize:         v.GetFloat64(KeyCellSize),
		ZoomRange:        v.GetFloat64(KeyZoomRange),
		GridExtent:       v.GetInt(KeyGridExtent),
		BufferCells:      v.GetInt(KeyBufferCells),
		VisibilityBuffer: v.GetFloat64(KeyVisibility),
		DragThreshold:    v.GetFloat64(KeyDragThreshold),
		ExpandDebounce:   v.GetDuration(KeyExpandDebounce),
		DragThrottle:     v.GetDuration(KeyDragThrottle),
		DeriveDebounce:   v.GetDuration(KeyDeriveDebounce),
		LogLevel:         v.GetString(KeyLogLevel),
		MIDIPort:         v.GetString(KeyMIDIPort),
		MIDIChannel:      v.GetInt(KeyMIDIChannel),
		Audio:            v.GetBool(KeyAudio),
		Volume:           v.GetFloat64(KeyVolume),
		Width:            v.GetInt(KeyWidth),
		Height:           v.GetInt(KeyHeight),
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// EngineOptions converts the configuration into the session options.
func (c Config) EngineOptions() engine.Options {
	return engine.Options{
		CellSize:         c.CellSize,
		VisibilityBuffer: c.VisibilityBuffer,
		Selection: selection.Options{
			RootNote:       c.RootNote,
			QInterval:      c.QInterval,
			RInterval:      c.RInterval,
			SingleOctave:   c.SingleOctave,
			DragThrottle:   c.DragThrottle,
			DeriveDebounce: c.DeriveDebounce,
			DeriveMaxWait:  2 * c.DeriveDebounce,
		},
		Viewport: viewport.Options{
			ZoomRange:   c.ZoomRange,
			GridExtent:  c.GridExtent,
			CellSize:    c.CellSize,
			BufferCells: c.BufferCells,
			Debounce:    c.ExpandDebounce,
			ScreenW:     float64(c.Width),
			ScreenH:     float64(c.Height),
		},
		Input: input.Options{DragThreshold: c.DragThreshold},
	}
}
