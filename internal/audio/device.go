//go:build !test

package audio

import (
	"fmt"
	"io"

	"github.com/ebitengine/oto/v3"

	game_log "github.com/ingyamilmolinar/tonnetz/internal/log"
)

// Device plays a PCM stream on the default output.
type Device struct {
	ctx    *oto.Context
	player *oto.Player
	logger *game_log.Logger
}

// Open starts streaming src as 44.1kHz signed 16-bit mono. oto allows a
// single context per process, so Open is called once.
func Open(src io.Reader, logger *game_log.Logger) (*Device, error) {
	if logger == nil {
		logger = game_log.Discard()
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("audio context: %w", err)
	}
	<-ready
	p := ctx.NewPlayer(src)
	p.SetBufferSize(bufferSizeBytes10ms)
	p.Play()
	logger.Infof("[AUDIO] output open at %dHz", SampleRate)
	return &Device{ctx: ctx, player: p, logger: logger}, nil
}

func (d *Device) Close() error {
	if d == nil || d.player == nil {
		return nil
	}
	err := d.player.Close()
	d.player = nil
	d.logger.Infof("[AUDIO] output closed")
	return err
}
