// Package audio plays synthesized speech files on the local output device.
package audio

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"log/slog"
)

// Player plays one audio file at a time. Play blocks until playback
// finishes, the context is canceled, or Stop is called.
type Player interface {
	Play(ctx context.Context, path string) error
	Stop()
}

// router picks a backend per file: WAV goes to the PortAudio device
// stream, everything else to the platform player binary.
type router struct {
	mu      sync.Mutex
	pa      *streamPlayer
	cmd     *commandPlayer
	current Player
}

// New creates the default player.
func New() Player {
	return &router{pa: newStreamPlayer(), cmd: newCommandPlayer()}
}

func (r *router) Play(ctx context.Context, path string) error {
	var p Player = r.cmd
	if strings.ToLower(filepath.Ext(path)) == ".wav" && r.pa.usable() {
		p = r.pa
	}

	r.mu.Lock()
	r.current = p
	r.mu.Unlock()

	err := p.Play(ctx, path)
	if err != nil && p == r.pa {
		// Device stream failed; the command player may still work.
		slog.Warn("device playback failed, falling back to player command", "error", err)
		r.mu.Lock()
		r.current = r.cmd
		r.mu.Unlock()
		err = r.cmd.Play(ctx, path)
	}

	r.mu.Lock()
	r.current = nil
	r.mu.Unlock()
	return err
}

func (r *router) Stop() {
	r.mu.Lock()
	p := r.current
	r.mu.Unlock()
	if p != nil {
		p.Stop()
	}
}
