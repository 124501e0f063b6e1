package audio

import (
	"context"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/subreader/subreader/internal/apperr"
)

const framesPerBuffer = 1024

// streamPlayer writes decoded PCM to the default output device.
type streamPlayer struct {
	initOnce sync.Once
	initErr  error

	mu      sync.Mutex
	stopped chan struct{}
}

func newStreamPlayer() *streamPlayer {
	return &streamPlayer{}
}

// usable reports whether PortAudio initialized. Initialization is deferred
// to first use so machines without a sound server still start up.
func (p *streamPlayer) usable() bool {
	p.initOnce.Do(func() {
		p.initErr = portaudio.Initialize()
	})
	return p.initErr == nil
}

func (p *streamPlayer) Play(ctx context.Context, path string) error {
	if !p.usable() {
		return apperr.Wrap(p.initErr, apperr.CodePlaybackFailed, "audio device init failed")
	}

	wav, err := parseWAV(path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	stopped := make(chan struct{})
	p.stopped = stopped
	p.mu.Unlock()

	buf := make([]int16, framesPerBuffer*wav.channels)
	stream, err := portaudio.OpenDefaultStream(0, wav.channels, float64(wav.sampleRate), framesPerBuffer, &buf)
	if err != nil {
		return apperr.Wrap(err, apperr.CodePlaybackFailed, "opening output stream")
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return apperr.Wrap(err, apperr.CodePlaybackFailed, "starting output stream")
	}
	defer stream.Stop()

	samples := wav.samples
	for len(samples) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopped:
			return nil
		default:
		}

		n := copy(buf, samples)
		samples = samples[n:]
		// Zero-pad the final partial buffer.
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}

		if err := stream.Write(); err != nil {
			return apperr.Wrap(err, apperr.CodePlaybackFailed, "writing to output stream")
		}
	}
	return nil
}

func (p *streamPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped != nil {
		select {
		case <-p.stopped:
		default:
			close(p.stopped)
		}
	}
}
