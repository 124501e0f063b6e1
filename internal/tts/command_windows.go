package tts

import (
	"fmt"
	"strings"

	"github.com/subreader/subreader/internal/apperr"
)

// Windows synthesis goes through the System.Speech API via PowerShell and
// writes WAV.
const speechScript = `Add-Type -AssemblyName System.Speech;
$s = New-Object System.Speech.Synthesis.SpeechSynthesizer;
%s$s.Rate = %d;
$s.SetOutputToWaveFile('%s');
$s.Speak('%s');
$s.Dispose();`

func lookupSpeechCommand(cfg Config) (speechCommand, error) {
	path, ok := commandExists("powershell")
	if !ok {
		return speechCommand{}, apperr.New(apperr.CodeEngineUnavailable, "powershell not found")
	}

	return speechCommand{
		path: path,
		ext:  "wav",
		args: func(text, outPath string) []string {
			voice := ""
			if cfg.Voice != "" {
				voice = fmt.Sprintf("$s.SelectVoice('%s');\n", psQuote(cfg.Voice))
			}
			script := fmt.Sprintf(speechScript, voice, sapiRate(cfg.SpeakingRate), psQuote(outPath), psQuote(text))
			return []string{"-NoProfile", "-NonInteractive", "-Command", script}
		},
	}, nil
}

// sapiRate maps a speaking-rate multiplier onto SAPI's -10..10 scale.
func sapiRate(rate float64) int {
	if rate <= 0 {
		rate = 1.0
	}
	r := int((rate - 1.0) * 10)
	if r < -10 {
		r = -10
	}
	if r > 10 {
		r = 10
	}
	return r
}

func psQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
