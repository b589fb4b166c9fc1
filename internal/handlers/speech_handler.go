package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"carewise/internal/speech"

	"go.uber.org/zap"
)

// maxSpeechText caps what one request may ask to have spoken.
const maxSpeechText = 5000

// maxAudioUpload caps a recorded clip.
const maxAudioUpload = 10 << 20

type speechRequest struct {
	Text   string `json:"text"`
	Avatar bool   `json:"avatar"`
}

// SpeechResponse tells the page how to speak the text: play URL, or use
// the browser voice when Fallback is set. Spoken is false when nothing
// should be said at all.
type SpeechResponse struct {
	Spoken   bool          `json:"spoken"`
	URL      string        `json:"url,omitempty"`
	Fallback bool          `json:"fallback,omitempty"`
	Voice    *speech.Voice `json:"voice,omitempty"`
	Reason   string        `json:"reason,omitempty"`
}

// TranscriptResponse carries the recognized text.
type TranscriptResponse struct {
	Transcript string `json:"transcript,omitempty"`
	Fallback   bool   `json:"fallback,omitempty"`
}

// Speak synthesizes text with the hosted voice, subject to the visitor's
// voice setting and per-prompt limit.
func (s *Server) Speak(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	var req speechRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSpeechText*4)).Decode(&req); err != nil {
		respondWithJSONError(w, s.logger, http.StatusBadRequest, ErrInvalidFormData, nil)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" || len(text) > maxSpeechText {
		respondWithJSONError(w, s.logger, http.StatusBadRequest, "Text must be between 1 and 5000 characters", nil)
		return
	}

	if settings, _ := s.settings.Load(r); !settings.VoiceEnabled {
		respondWithJSON(w, s.logger, http.StatusOK, SpeechResponse{Reason: "voice disabled"})
		return
	}
	if !v.Speech.Allow() {
		respondWithJSON(w, s.logger, http.StatusOK, SpeechResponse{Reason: "limit"})
		return
	}

	voice := speech.PlatformVoice
	if req.Avatar {
		voice = speech.AvatarVoice
	}
	fallback := SpeechResponse{Spoken: true, Fallback: true, Voice: &voice}

	if s.synthesizer == nil {
		respondWithJSON(w, s.logger, http.StatusOK, fallback)
		return
	}
	file, err := s.synthesizer.Synthesize(r.Context(), text)
	if err != nil {
		s.logger.Debug("using browser voice", zap.Error(err))
		respondWithJSON(w, s.logger, http.StatusOK, fallback)
		return
	}
	respondWithJSON(w, s.logger, http.StatusOK, SpeechResponse{Spoken: true, URL: "/audio/" + file, Voice: &voice})
}

// ResetSpeech starts a new prompt, restoring the speech allowance.
func (s *Server) ResetSpeech(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())
	v.Speech.Reset()
	respondWithJSON(w, s.logger, http.StatusOK, map[string]int{"remaining": v.Speech.Remaining()})
}

// Transcribe recognizes one uploaded clip.
func (s *Server) Transcribe(w http.ResponseWriter, r *http.Request) {
	if !s.recognizer.Supported() {
		respondWithJSON(w, s.logger, http.StatusOK, TranscriptResponse{Fallback: true})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioUpload)
	file, header, err := r.FormFile("audio")
	if err != nil {
		respondWithJSONError(w, s.logger, http.StatusBadRequest, "Audio clip is required", nil)
		return
	}
	defer file.Close()

	text, err := s.recognizer.Transcribe(r.Context(), header.Filename, file)
	switch {
	case errors.Is(err, speech.ErrNoTranscript):
		respondWithJSONError(w, s.logger, http.StatusUnprocessableEntity, "Sorry, I could not hear that.", nil)
	case err != nil:
		s.logger.Warn("speech recognition failed, using browser recognizer", zap.Error(err))
		respondWithJSON(w, s.logger, http.StatusOK, TranscriptResponse{Fallback: true})
	default:
		respondWithJSON(w, s.logger, http.StatusOK, TranscriptResponse{Transcript: text})
	}
}
