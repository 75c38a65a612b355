// Package commands holds the tonnetz command tree.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/ingyamilmolinar/tonnetz/core/engine"
	"github.com/ingyamilmolinar/tonnetz/core/selection"
	"github.com/ingyamilmolinar/tonnetz/internal/audio"
	"github.com/ingyamilmolinar/tonnetz/internal/config"
	game_log "github.com/ingyamilmolinar/tonnetz/internal/log"
	"github.com/ingyamilmolinar/tonnetz/internal/midi"
	"github.com/ingyamilmolinar/tonnetz/internal/ui"
)

type options struct {
	configPath string
	v          *viper.Viper
}

func New() *cobra.Command {
	o := &options{v: config.NewViper()}
	d := config.Default()

	cmd := &cobra.Command{
		Use:   "tonnetz",
		Short: "Interactive tonnetz: play notes, chords and modes on a triangular pitch lattice.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run()
		},
		SilenceUsage: true,
	}
	f := cmd.PersistentFlags()
	f.StringVar(&o.configPath, "config", "", "config file (default ./.tonnetz.yaml)")
	f.String(config.KeyRoot, d.RootNote, "note at the lattice origin")
	f.Int(config.KeyQInterval, d.QInterval, "semitones per step along q")
	f.Int(config.KeyRInterval, d.RInterval, "semitones per step along r")
	f.Bool(config.KeySingleOctave, d.SingleOctave, "label notes without octaves")
	f.String(config.KeyLogLevel, d.LogLevel, "debug, info, warn, error or none")
	f.String(config.KeyMIDIPort, d.MIDIPort, "MIDI output port name (substring match)")
	f.Int(config.KeyMIDIChannel, d.MIDIChannel, "MIDI channel, 0-15")
	f.Bool(config.KeyAudio, d.Audio, "play notes through the built-in synth")
	f.Float64(config.KeyVolume, d.Volume, "synth volume, 0-1")
	f.Int(config.KeyWidth, d.Width, "window width")
	f.Int(config.KeyHeight, d.Height, "window height")
	if err := o.v.BindPFlags(f); err != nil {
		panic(err)
	}

	addCommands(cmd, o)
	return cmd
}

func addCommands(topLevel *cobra.Command, o *options) {
	addPorts(topLevel)
	addIdentify(topLevel, o)
	addLocate(topLevel, o)
}

func (o *options) load() (config.Config, *game_log.Logger, error) {
	cfg, err := config.Load(o.v, o.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, game_log.New(os.Stderr, game_log.LevelFromString(cfg.LogLevel)), nil
}

func (o *options) run() error {
	cfg, logger, err := o.load()
	if err != nil {
		return err
	}
	eng, err := engine.New(cfg.EngineOptions(), logger)
	if err != nil {
		return err
	}

	if cfg.Audio {
		synth := audio.NewSynth(cfg.Volume, logger)
		dev, err := audio.Open(synth, logger)
		if err != nil {
			logger.Warnf("[MAIN] audio disabled: %v", err)
		} else {
			defer dev.Close()
			eng.Subscribe(synth.Update)
		}
	}
	if cfg.MIDIPort != "" {
		defer gomidi.CloseDriver()
		sink, err := midi.Open(cfg.MIDIPort, uint8(cfg.MIDIChannel), logger)
		if err != nil {
			logger.Warnf("[MAIN] midi disabled: %v", err)
		} else {
			defer sink.Close()
			eng.Subscribe(sink.Update)
		}
	}

	g := ui.New(eng, logger)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle("Tonnetz")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetScreenClearedEveryFrame(false)
	return ebiten.RunGame(g)
}

// session builds a headless engine from the flags, for the query commands.
func (o *options) session() (*engine.Engine, error) {
	cfg, err := config.Load(o.v, o.configPath)
	if err != nil {
		return nil, err
	}
	return engine.New(cfg.EngineOptions(), game_log.Discard())
}

func addPorts(topLevel *cobra.Command) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "ports",
		Short: "List MIDI output ports.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer gomidi.CloseDriver()
			ports := midi.Ports()
			if len(ports) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no MIDI outputs")
				return nil
			}
			for _, p := range ports {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	})
}

func addIdentify(topLevel *cobra.Command, o *options) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "identify NOTE...",
		Short: "Name a note set and print its shape on the lattice.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := o.session()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if name, ok := selection.IdentifyChord(args); ok {
				fmt.Fprintln(out, name)
			} else {
				fmt.Fprintln(out, "no library chord")
			}
			shape, err := eng.Selection().RelativePattern(args)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "shape %s\n", shape)
			return nil
		},
	})
}

func addLocate(topLevel *cobra.Command, o *options) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "locate NOTE...",
		Short: "Print the lattice coordinate nearest the origin for each note.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := o.session()
			if err != nil {
				return err
			}
			var missing []string
			for _, n := range args {
				a, err := eng.Selection().Locate(n)
				if err != nil {
					missing = append(missing, n)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d,%d)\n", n, a.Q, a.R)
			}
			if len(missing) > 0 {
				return fmt.Errorf("not on the lattice: %s", strings.Join(missing, " "))
			}
			return nil
		},
	})
}
