// Package app drives the capture-recognize-speak loop and owns its
// lifecycle.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/subreader/subreader/internal/apperr"
	"github.com/subreader/subreader/internal/audio"
	"github.com/subreader/subreader/internal/capture"
	"github.com/subreader/subreader/internal/config"
	"github.com/subreader/subreader/internal/history"
	"github.com/subreader/subreader/internal/imaging"
	"github.com/subreader/subreader/internal/ocr"
	"github.com/subreader/subreader/internal/recognizer"
	"github.com/subreader/subreader/internal/speech"
	"github.com/subreader/subreader/internal/status"
	"github.com/subreader/subreader/internal/syncx"
	"github.com/subreader/subreader/internal/tts"
)

// State is the lifecycle state of the loop.
type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

const (
	pausePollInterval = 500 * time.Millisecond
	statusThrottle    = 5 * time.Second
	stopTimeout       = 5 * time.Second
)

// flags holds the mutable lifecycle bits shared between the loop and the
// control surface.
type flags struct {
	state State
	stop  chan struct{}
	done  chan struct{}
}

// App wires capture, recognition, speech, history and status together.
type App struct {
	cfg   *config.Config
	hub   *status.Hub
	store *history.Store

	session string

	fl *syncx.RWGuard[flags]

	capturer capture.Capturer
	rec      *recognizer.Recognizer
	synth    *speech.Synthesizer
}

// New creates a stopped app. store may be nil to disable history.
func New(cfg *config.Config, hub *status.Hub, store *history.Store) *App {
	return &App{
		cfg:   cfg,
		hub:   hub,
		store: store,
		fl:    syncx.NewGuard(flags{state: StateStopped}),
	}
}

// Session returns the identifier for the current (or last) run.
func (a *App) Session() string { return a.session }

// State returns the current lifecycle state.
func (a *App) State() State {
	return a.fl.Get().state
}

// Start builds the pipeline and launches the loop. Returns an error when
// already running or when no engine can be constructed.
func (a *App) Start() error {
	alreadyRunning := false
	a.fl.Write(func(f *flags) {
		if f.state != StateStopped {
			alreadyRunning = true
			return
		}
		f.state = StateRunning
		f.stop = make(chan struct{})
		f.done = make(chan struct{})
	})
	if alreadyRunning {
		return apperr.New(apperr.CodeUnknown, "already running")
	}

	if err := a.buildPipeline(); err != nil {
		a.fl.Write(func(f *flags) {
			f.state = StateStopped
			close(f.done)
		})
		return err
	}

	a.session = uuid.NewString()
	a.synth.Start()

	fl := a.fl.Get()
	go a.run(fl.stop, fl.done)

	slog.Info("reader started",
		"session", a.session,
		"region", a.cfg.Capture.Region,
		"interval", a.cfg.Capture.IntervalSeconds)
	a.publishState(StateRunning, "")
	return nil
}

func (a *App) buildPipeline() error {
	engine, err := ocr.New(ocr.Config{
		Engine:        a.cfg.OCR.Engine,
		Language:      a.cfg.OCR.Language,
		TesseractPath: a.cfg.OCR.TesseractPath,
		PSM:           a.cfg.OCR.PSM,
	})
	if err != nil {
		return err
	}

	a.capturer = capture.New()
	a.rec = recognizer.New(a.capturer, engine, recognizer.Config{
		ConfidenceThreshold: a.cfg.OCR.ConfidenceThreshold,
		Preprocess: imaging.Config{
			Enable:        a.cfg.OCR.Preprocess.Enable,
			Grayscale:     a.cfg.OCR.Preprocess.Grayscale,
			Threshold:     a.cfg.OCR.Preprocess.Threshold,
			Invert:        a.cfg.OCR.Preprocess.Invert,
			AutoThreshold: a.cfg.OCR.Preprocess.AutoThreshold,
			Scale:         a.cfg.OCR.Preprocess.Scale,
		},
		FramePrefilter:  a.cfg.OCR.FramePrefilter,
		MaxHashDistance: a.cfg.OCR.MaxHashDistance,
	})

	primary, fallback, err := a.buildVoices()
	if err != nil {
		return err
	}
	a.synth = speech.New(primary, fallback, audio.New(), a.cfg.AudioCacheDir())
	return nil
}

// buildVoices constructs the speech engines. A dead primary demotes the
// fallback to primary; only a total absence of engines is fatal.
func (a *App) buildVoices() (primary, fallback tts.Engine, err error) {
	primaryCfg := tts.Config{
		Engine:          a.cfg.TTS.Engine,
		Voice:           a.cfg.TTS.Voice,
		Language:        a.cfg.TTS.Language,
		SpeakingRate:    a.cfg.TTS.SpeakingRate,
		Pitch:           a.cfg.TTS.Pitch,
		CredentialsFile: a.cfg.TTS.CredentialsFile,
	}
	fallbackCfg := tts.Config{
		Engine:       a.cfg.TTS.FallbackEngine,
		Voice:        a.cfg.TTS.FallbackVoice,
		Language:     a.cfg.TTS.Language,
		SpeakingRate: a.cfg.TTS.SpeakingRate,
	}

	primary, primaryErr := tts.New(primaryCfg)
	if a.cfg.TTS.FallbackEngine != "" && a.cfg.TTS.FallbackEngine != a.cfg.TTS.Engine {
		fallback, err = tts.New(fallbackCfg)
		if err != nil {
			slog.Warn("fallback speech engine unavailable", "engine", a.cfg.TTS.FallbackEngine, "error", err)
			fallback = nil
			err = nil
		}
	}

	if primaryErr != nil {
		if fallback == nil {
			return nil, nil, primaryErr
		}
		slog.Warn("primary speech engine unavailable, promoting fallback",
			"primary", a.cfg.TTS.Engine, "fallback", a.cfg.TTS.FallbackEngine, "error", primaryErr)
		return fallback, nil, nil
	}
	return primary, fallback, nil
}

// Pause suspends recognition; the loop keeps running and queued speech
// still plays out.
func (a *App) Pause() {
	changed := false
	a.fl.Write(func(f *flags) {
		if f.state == StateRunning {
			f.state = StatePaused
			changed = true
		}
	})
	if changed {
		slog.Info("reader paused")
		a.publishState(StatePaused, "")
	}
}

// Resume continues recognition after a pause.
func (a *App) Resume() {
	changed := false
	a.fl.Write(func(f *flags) {
		if f.state == StatePaused {
			f.state = StateRunning
			changed = true
		}
	})
	if changed {
		slog.Info("reader resumed")
		a.publishState(StateRunning, "")
	}
}

// Stop halts the loop, silences speech, and clears dedup state so the
// next session starts fresh.
func (a *App) Stop() {
	var done chan struct{}
	stopped := false
	a.fl.Write(func(f *flags) {
		if f.state == StateStopped {
			stopped = true
			return
		}
		f.state = StateStopped
		close(f.stop)
		done = f.done
	})
	if stopped {
		return
	}

	select {
	case <-done:
	case <-time.After(stopTimeout):
		slog.Warn("loop did not stop in time")
	}

	// Silence first: the worker is likely blocked in playback, and Close
	// can only join it once that playback is cancelled.
	a.synth.StopSpeaking()
	a.synth.Close(stopTimeout)
	a.rec.Reset()
	a.capturer.Close()

	slog.Info("reader stopped", "session", a.session)
	a.publishState(StateStopped, "")
}

// Status returns a snapshot for the control API.
func (a *App) Status() status.Event {
	evt := status.Event{
		Type:  "status",
		State: string(a.State()),
		At:    time.Now(),
	}
	if a.synth != nil {
		evt.QueueLen = a.synth.QueueLen()
		evt.Speaking = a.synth.Speaking()
	}
	if a.rec != nil {
		evt.Text = a.rec.LastText()
	}
	return evt
}

// Preview runs a single recognition cycle without speaking, for region
// tuning.
func (a *App) Preview() (recognizer.Result, error) {
	engine, err := ocr.New(ocr.Config{
		Engine:        a.cfg.OCR.Engine,
		Language:      a.cfg.OCR.Language,
		TesseractPath: a.cfg.OCR.TesseractPath,
		PSM:           a.cfg.OCR.PSM,
	})
	if err != nil {
		return recognizer.Result{}, err
	}

	capturer := capture.New()
	defer capturer.Close()

	rec := recognizer.New(capturer, engine, recognizer.Config{
		ConfidenceThreshold: a.cfg.OCR.ConfidenceThreshold,
		Preprocess: imaging.Config{
			Enable:        a.cfg.OCR.Preprocess.Enable,
			Grayscale:     a.cfg.OCR.Preprocess.Grayscale,
			Threshold:     a.cfg.OCR.Preprocess.Threshold,
			Invert:        a.cfg.OCR.Preprocess.Invert,
			AutoThreshold: a.cfg.OCR.Preprocess.AutoThreshold,
			Scale:         a.cfg.OCR.Preprocess.Scale,
		},
	})
	return rec.Recognize(region(a.cfg)), nil
}

func region(cfg *config.Config) capture.Region {
	return capture.Region{
		X:      cfg.Capture.Region.X,
		Y:      cfg.Capture.Region.Y,
		Width:  cfg.Capture.Region.Width,
		Height: cfg.Capture.Region.Height,
	}
}

func (a *App) run(stop, done chan struct{}) {
	defer close(done)

	interval := time.Duration(a.cfg.Capture.IntervalSeconds * float64(time.Second))
	if interval <= 0 {
		interval = time.Second
	}
	reg := region(a.cfg)

	var lastStatusAt time.Time

	for {
		select {
		case <-stop:
			return
		default:
		}

		if a.State() == StatePaused {
			select {
			case <-stop:
				return
			case <-time.After(pausePollInterval):
			}
			continue
		}

		res := a.rec.Recognize(reg)
		if res.Reason == recognizer.ReasonOK {
			a.accept(res)
			lastStatusAt = time.Now()
		} else if time.Since(lastStatusAt) >= statusThrottle {
			// One notice per throttle window, no matter how often the
			// reason flips in between.
			slog.Info("cycle status", "reason", res.Reason, "detail", res.Reason.Describe())
			a.hub.Publish(status.Event{
				Type:     "status",
				State:    string(a.State()),
				Reason:   string(res.Reason),
				Detail:   res.Reason.Describe(),
				QueueLen: a.synth.QueueLen(),
				Speaking: a.synth.Speaking(),
			})
			lastStatusAt = time.Now()
		}

		select {
		case <-stop:
			return
		case <-time.After(interval):
		}
	}
}

// accept queues the recognized line for speech, records it, and announces
// it to subscribers.
func (a *App) accept(res recognizer.Result) {
	slog.Info("subtitle recognized", "text", res.Text, "confidence", res.Confidence)
	a.synth.Enqueue(res.Text)

	if a.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if _, err := a.store.Append(ctx, history.Entry{
			SessionID:  a.session,
			Text:       res.Text,
			Confidence: res.Confidence,
		}); err != nil {
			slog.Warn("history write failed", "error", err)
		}
		cancel()
	}

	a.hub.Publish(status.Event{
		Type:       "subtitle",
		State:      string(a.State()),
		Reason:     string(res.Reason),
		Text:       res.Text,
		Confidence: res.Confidence,
		QueueLen:   a.synth.QueueLen(),
		Speaking:   a.synth.Speaking(),
	})
}

func (a *App) publishState(s State, detail string) {
	evt := status.Event{
		Type:   "state",
		State:  string(s),
		Detail: detail,
	}
	if a.synth != nil {
		evt.QueueLen = a.synth.QueueLen()
		evt.Speaking = a.synth.Speaking()
	}
	a.hub.Publish(evt)
}
