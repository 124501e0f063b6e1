package audio

import (
	"encoding/binary"
	"os"

	"github.com/subreader/subreader/internal/apperr"
)

// wavData is decoded 16-bit PCM ready for an output stream.
type wavData struct {
	channels   int
	sampleRate int
	samples    []int16
}

// parseWAV reads a RIFF/WAVE file and returns its PCM payload. Only
// uncompressed 16-bit PCM is supported; that is what the command speech
// engines produce.
func parseWAV(path string) (*wavData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodePlaybackFailed, "reading audio file")
	}
	if len(raw) < 12 || string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return nil, apperr.New(apperr.CodePlaybackFailed, "not a WAVE file")
	}

	var (
		w       wavData
		gotFmt  bool
		gotData bool
	)

	// Chunks follow the 12-byte RIFF header: 4-byte id, 4-byte size, payload.
	for off := 12; off+8 <= len(raw); {
		id := string(raw[off : off+4])
		size := int(binary.LittleEndian.Uint32(raw[off+4 : off+8]))
		body := raw[off+8:]
		if size > len(body) {
			size = len(body)
		}
		body = body[:size]

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, apperr.New(apperr.CodePlaybackFailed, "truncated fmt chunk")
			}
			format := binary.LittleEndian.Uint16(body[0:2])
			bits := binary.LittleEndian.Uint16(body[14:16])
			if format != 1 || bits != 16 {
				return nil, apperr.Newf(apperr.CodePlaybackFailed,
					"unsupported WAV encoding (format %d, %d-bit)", format, bits)
			}
			w.channels = int(binary.LittleEndian.Uint16(body[2:4]))
			w.sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			gotFmt = true
		case "data":
			w.samples = make([]int16, len(body)/2)
			for i := range w.samples {
				w.samples[i] = int16(binary.LittleEndian.Uint16(body[2*i : 2*i+2]))
			}
			gotData = true
		}

		// Chunk payloads are word-aligned.
		off += 8 + size + size%2
	}

	if !gotFmt || !gotData {
		return nil, apperr.New(apperr.CodePlaybackFailed, "incomplete WAVE file")
	}
	if w.channels < 1 {
		return nil, apperr.New(apperr.CodePlaybackFailed, "WAVE file has no channels")
	}
	return &w, nil
}
