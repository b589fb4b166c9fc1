package handlers

import (
	"encoding/json"
	"net/http"

	"carewise/internal/game"
)

// GameViewData backs the Sunshine Hero page.
type GameViewData struct {
	Duration   int
	Width      int
	Height     int
	PlayerSize int
	ItemSize   int
	State      game.State
	Healthy    []string
	Unhealthy  []string
}

// GameResponse is returned by every game endpoint.
type GameResponse struct {
	State  game.State   `json:"state"`
	Events []game.Event `json:"events"`
}

type moveRequest struct {
	Key string   `json:"key"`
	X   *float64 `json:"x"`
	Y   *float64 `json:"y"`
}

func (s *Server) respondWithGame(w http.ResponseWriter, v *Visitor) {
	events := v.Game.DrainEvents()
	if events == nil {
		events = []game.Event{}
	}
	for _, e := range events {
		if e.Kind == game.EventGameOver {
			v.Announcer.Announce(e.Message)
		}
	}
	respondWithJSON(w, s.logger, http.StatusOK, GameResponse{State: v.Game.Snapshot(), Events: events})
}

// ShowGame displays the game board.
func (s *Server) ShowGame(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())
	s.renderPage(w, r, "sunshine_hero", "Sunshine Hero", "sunshine-hero", GameViewData{
		Duration:   game.Duration,
		Width:      game.BoardWidth,
		Height:     game.BoardHeight,
		PlayerSize: game.PlayerSize,
		ItemSize:   game.ItemSize,
		State:      v.Game.Snapshot(),
		Healthy:    game.Emoji(game.Healthy),
		Unhealthy:  game.Emoji(game.Unhealthy),
	})
}

// GameState returns the board and any events since the last poll.
func (s *Server) GameState(w http.ResponseWriter, r *http.Request) {
	s.respondWithGame(w, VisitorFromContext(r.Context()))
}

// StartGame starts play and the tick loop.
func (s *Server) StartGame(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())
	v.Game.Start()
	v.Runner.Start(s.baseCtx)
	s.respondWithGame(w, v)
}

// PauseGame toggles pause. The clock only counts down while playing.
func (s *Server) PauseGame(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())
	if v.Game.TogglePause() {
		v.Runner.Start(s.baseCtx)
	}
	s.respondWithGame(w, v)
}

// MoveGame moves the player by key or to a clicked point.
func (s *Server) MoveGame(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	var req moveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		respondWithJSONError(w, s.logger, http.StatusBadRequest, ErrInvalidFormData, nil)
		return
	}
	switch {
	case req.Key != "":
		v.Game.Move(req.Key)
	case req.X != nil && req.Y != nil:
		v.Game.MoveTo(*req.X, *req.Y)
	default:
		respondWithJSONError(w, s.logger, http.StatusBadRequest, ErrInvalidFormData, nil)
		return
	}
	s.respondWithGame(w, v)
}

// ResetGame stops the clock and lays out a fresh board.
func (s *Server) ResetGame(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())
	v.Runner.Stop()
	v.Game.Reset()
	s.respondWithGame(w, v)
}
