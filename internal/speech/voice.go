package speech

import "errors"

var (
	// ErrFallback means the hosted voice is unavailable and the page should
	// speak with the browser's own synthesizer.
	ErrFallback = errors.New("speech synthesis unavailable")

	// ErrUnsupported means server-side recognition is not configured.
	ErrUnsupported = errors.New("speech recognition not supported")

	// ErrNoTranscript means the recognizer heard nothing usable.
	ErrNoTranscript = errors.New("no speech recognized")
)

// Voice holds the parameters for the browser speech fallback.
type Voice struct {
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
	Lang   string  `json:"lang"`
}

// PlatformVoice is used whenever the hosted voice is unavailable.
var PlatformVoice = Voice{Rate: 0.9, Pitch: 1, Volume: 0.8, Lang: "en-US"}

// AvatarVoice is the slightly brighter voice used alongside the avatar.
var AvatarVoice = Voice{Rate: 0.9, Pitch: 1.1, Volume: 0.8, Lang: "en-US"}
