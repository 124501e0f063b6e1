// Package speech serializes text-to-speech output: one queue, one worker,
// one utterance audible at a time.
package speech

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/subreader/subreader/internal/audio"
	"github.com/subreader/subreader/internal/resilience"
	"github.com/subreader/subreader/internal/tts"
)

const (
	defaultPollInterval = 100 * time.Millisecond
	cachePrefix         = "speech_"
)

// Synthesizer owns the utterance queue. Enqueue never blocks; a single
// worker goroutine dequeues, materializes audio, and plays it to
// completion before touching the next item.
type Synthesizer struct {
	primary  tts.Engine
	fallback tts.Engine
	player   audio.Player
	breaker  *resilience.Breaker
	cacheDir string
	poll     time.Duration

	mu    sync.Mutex
	queue []string

	speaking   atomic.Bool
	playMu     sync.Mutex
	playCancel context.CancelFunc

	startOnce sync.Once
	started   atomic.Bool
	stop      chan struct{}
	done      chan struct{}
}

// New creates a synthesizer. fallback may be nil; utterances are then
// dropped when the primary engine fails.
func New(primary, fallback tts.Engine, player audio.Player, cacheDir string) *Synthesizer {
	return &Synthesizer{
		primary:  primary,
		fallback: fallback,
		player:   player,
		breaker:  resilience.New(resilience.FastConfig()),
		cacheDir: cacheDir,
		poll:     defaultPollInterval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the worker. Safe to call once.
func (s *Synthesizer) Start() {
	s.startOnce.Do(func() {
		s.started.Store(true)
		go s.run()
	})
}

// Enqueue appends text to the queue. Blank text is ignored.
func (s *Synthesizer) Enqueue(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	s.mu.Lock()
	s.queue = append(s.queue, text)
	n := len(s.queue)
	s.mu.Unlock()
	slog.Debug("utterance queued", "pending", n)
}

// QueueLen returns the number of utterances waiting to be spoken.
func (s *Synthesizer) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Speaking reports whether an utterance is currently audible.
func (s *Synthesizer) Speaking() bool {
	return s.speaking.Load()
}

// StopSpeaking drops every queued utterance and cuts off the current one.
func (s *Synthesizer) StopSpeaking() {
	s.mu.Lock()
	dropped := len(s.queue)
	s.queue = nil
	s.mu.Unlock()

	s.playMu.Lock()
	if s.playCancel != nil {
		s.playCancel()
	}
	s.playMu.Unlock()
	s.player.Stop()

	if dropped > 0 {
		slog.Info("speech queue cleared", "dropped", dropped)
	}
}

// Close stops the worker, waiting up to timeout for the current utterance.
// Safe to call even when Start never ran.
func (s *Synthesizer) Close(timeout time.Duration) {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}

	// No worker means nothing will ever close done.
	if !s.started.Load() {
		return
	}

	select {
	case <-s.done:
	case <-time.After(timeout):
		slog.Warn("speech worker did not stop in time, cutting playback")
		s.StopSpeaking()
		<-s.done
	}
}

func (s *Synthesizer) run() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case <-time.After(s.poll):
		}

		for {
			text, ok := s.dequeue()
			if !ok {
				break
			}
			s.speakOne(text)

			select {
			case <-s.stop:
				return
			default:
			}
		}
	}
}

func (s *Synthesizer) dequeue() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return "", false
	}
	text := s.queue[0]
	s.queue = s.queue[1:]
	return text, true
}

// speakOne materializes audio for text and plays it to completion. Never
// panics; a failed utterance is logged and dropped.
func (s *Synthesizer) speakOne(text string) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("speech worker panicked", "panic", rec)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	s.playMu.Lock()
	s.playCancel = cancel
	s.playMu.Unlock()
	defer func() {
		cancel()
		s.playMu.Lock()
		s.playCancel = nil
		s.playMu.Unlock()
	}()

	path, err := s.materialize(ctx, text)
	if err != nil {
		slog.Error("dropping utterance, no engine could synthesize it", "error", err)
		return
	}

	s.speaking.Store(true)
	defer s.speaking.Store(false)

	if err := s.player.Play(ctx, path); err != nil && ctx.Err() == nil {
		slog.Error("playback failed", "path", path, "error", err)
	}
}

// materialize returns a cached or freshly synthesized audio file for text.
// The primary engine is guarded by a circuit breaker so a dead cloud
// backend degrades to the fallback without per-utterance timeouts.
func (s *Synthesizer) materialize(ctx context.Context, text string) (string, error) {
	primaryPath := filepath.Join(s.cacheDir, cacheFileName(text, s.primary.Ext()))
	if fileExists(primaryPath) {
		slog.Debug("speech cache hit", "engine", s.primary.Name())
		return primaryPath, nil
	}

	err := s.breaker.Execute(func() error {
		return s.primary.Synthesize(ctx, text, primaryPath)
	})
	if err == nil {
		return primaryPath, nil
	}
	if s.fallback == nil {
		return "", err
	}
	slog.Warn("primary speech engine failed, using fallback",
		"primary", s.primary.Name(), "fallback", s.fallback.Name(), "error", err)

	fallbackPath := filepath.Join(s.cacheDir, cacheFileName(text, s.fallback.Ext()))
	if fileExists(fallbackPath) {
		return fallbackPath, nil
	}
	if err := s.fallback.Synthesize(ctx, text, fallbackPath); err != nil {
		return "", err
	}
	return fallbackPath, nil
}

// cacheFileName derives a stable name from the text content so cached
// audio survives restarts.
func cacheFileName(text, ext string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s%x.%s", cachePrefix, sum[:12], ext)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ClearCache removes every cached audio file, returning how many were
// deleted.
func (s *Synthesizer) ClearCache() (int, error) {
	return ClearCache(s.cacheDir)
}

// ClearCache removes cached audio files under dir.
func ClearCache(dir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, cachePrefix+"*"))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// CacheStats reports the number and total size of cached audio files.
func CacheStats(dir string) (count int, bytes int64, err error) {
	matches, err := filepath.Glob(filepath.Join(dir, cachePrefix+"*"))
	if err != nil {
		return 0, 0, err
	}
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		count++
		bytes += info.Size()
	}
	return count, bytes, nil
}
