package audio

import (
	"context"
	"os/exec"
	"sync"

	"github.com/subreader/subreader/internal/apperr"
)

// commandPlayer shells out to the platform audio player binary. Each
// platform file provides lookupPlayerCommand.
type commandPlayer struct {
	path string
	args func(file string) []string
	err  error

	mu  sync.Mutex
	cmd *exec.Cmd
}

func newCommandPlayer() *commandPlayer {
	p := &commandPlayer{}
	p.path, p.args, p.err = lookupPlayerCommand()
	return p
}

func (p *commandPlayer) Play(ctx context.Context, file string) error {
	if p.err != nil {
		return apperr.Wrap(p.err, apperr.CodePlaybackFailed, "no audio player available")
	}

	cmd := exec.CommandContext(ctx, p.path, p.args(file)...)

	p.mu.Lock()
	p.cmd = cmd
	p.mu.Unlock()

	err := cmd.Run()

	p.mu.Lock()
	p.cmd = nil
	p.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		return apperr.Wrap(err, apperr.CodePlaybackFailed, "player command failed").
			WithMetadata("player", p.path)
	}
	return nil
}

func (p *commandPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}

func commandExists(name string) (string, bool) {
	path, err := exec.LookPath(name)
	return path, err == nil
}
