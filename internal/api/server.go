package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"labelsim/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	feedSubscribed        = "subscribed"
	feedPeriod            = "period"
	feedCampaignCompleted = "campaign_completed"
)

type Server struct {
	log  *slog.Logger
	game *game.Service
	hub  *Hub
	mux  *chi.Mux
}

func New(logger *slog.Logger, gameSvc *game.Service, hub *Hub) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		log:  logger,
		game: gameSvc,
		hub:  hub,
		mux:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		// The feed is long-lived, so it sits outside the request timeout.
		r.Get("/games/{id}/feed", s.handleFeed)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Post("/games", s.handleNewGame)
			r.Get("/games/{id}", s.handleSnapshot)
			r.Post("/games/{id}/artists", s.handleSignArtist)
			r.Post("/games/{id}/executives", s.handleHireExecutive)
			r.Post("/games/{id}/projects", s.handleStartProject)
			r.Post("/games/{id}/releases", s.handlePlanRelease)
			r.Post("/games/{id}/advance", s.handleAdvance)
			r.Post("/preview/{kind}", s.handlePreview)
		})
	})
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req game.NewGameInput
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	state, err := s.game.NewGame(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.game.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSignArtist(w http.ResponseWriter, r *http.Request) {
	var req game.SignArtistInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	artist, err := s.game.SignArtist(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, artist)
}

func (s *Server) handleHireExecutive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	exec, err := s.game.HireExecutive(r.Context(), chi.URLParam(r, "id"), strings.TrimSpace(req.Role))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, exec)
}

func (s *Server) handleStartProject(w http.ResponseWriter, r *http.Request) {
	var req game.StartProjectInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	project, err := s.game.StartProject(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (s *Server) handlePlanRelease(w http.ResponseWriter, r *http.Request) {
	var req game.PlanReleaseInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	rel, err := s.game.PlanRelease(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rel)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Actions []game.ActionEnvelope `json:"actions"`
	}
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	actions, err := game.DecodeActions(req.Actions)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	gameID := chi.URLParam(r, "id")
	res, err := s.game.Advance(r.Context(), gameID, actions)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if s.hub != nil {
		s.hub.Publish(gameID, feedPeriod, res.Summary)
		if res.CampaignResults != nil {
			s.hub.Publish(gameID, feedCampaignCompleted, res.CampaignResults)
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeError(w, http.StatusNotFound, "feed disabled")
		return
	}
	gameID := chi.URLParam(r, "id")
	if _, err := s.game.Snapshot(r.Context(), gameID); err != nil {
		writeDomainError(w, err)
		return
	}
	s.hub.serveWS(w, r, gameID)
}

type previewRequest struct {
	Seed  int64           `json:"seed"`
	Input json.RawMessage `json:"input"`
}

type projectCostInput struct {
	Type             string  `json:"type"`
	ProducerTier     string  `json:"producer_tier"`
	TimeInvestment   string  `json:"time_investment"`
	SongCount        int     `json:"song_count"`
	Cities           int     `json:"cities"`
	BudgetMultiplier float64 `json:"budget_multiplier"`
}

// handlePreview exposes the pure formulas. The same seed always gives the
// same draw.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	out, err := s.preview(chi.URLParam(r, "kind"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) preview(kind string, req previewRequest) (any, error) {
	rules := s.game.Rules()
	rng := game.NewRandom("preview", 0, req.Seed)
	switch kind {
	case "quality":
		var in game.QualityInput
		if err := decodeInput(req.Input, &in); err != nil {
			return nil, err
		}
		return game.Quality(rules, rng, in)
	case "streaming":
		var in game.StreamingInput
		if err := decodeInput(req.Input, &in); err != nil {
			return nil, err
		}
		return game.StreamingOutcome(rules, rng, in)
	case "press":
		var in game.PressInput
		if err := decodeInput(req.Input, &in); err != nil {
			return nil, err
		}
		n, err := game.PressPickups(rules, rng, in)
		if err != nil {
			return nil, err
		}
		return map[string]int{"pickups": n}, nil
	case "tour":
		var in game.TourInput
		if err := decodeInput(req.Input, &in); err != nil {
			return nil, err
		}
		cities, err := game.TourRevenue(rules, rng, in)
		if err != nil {
			return nil, err
		}
		var total int64
		for _, c := range cities {
			total += c.Revenue
		}
		return map[string]any{"cities": cities, "revenue": total}, nil
	case "project_cost":
		var in projectCostInput
		if err := decodeInput(req.Input, &in); err != nil {
			return nil, err
		}
		typ, err := game.ParseProjectType(in.Type)
		if err != nil {
			return nil, err
		}
		cost, err := game.ProjectCost(rules, typ, in.ProducerTier, in.TimeInvestment, in.SongCount, in.Cities, in.BudgetMultiplier)
		if err != nil {
			return nil, err
		}
		return map[string]int64{"cost": cost}, nil
	default:
		return nil, fmt.Errorf("preview %q: %w", kind, game.ErrNotFound)
	}
}

func decodeInput(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing input", game.ErrInvalidInput)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", game.ErrInvalidInput, err)
	}
	return nil
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrCampaignCompleted), errors.Is(err, game.ErrTxConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrGameNotFound), errors.Is(err, game.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrUnknownChoice), game.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

// decodeOptionalJSON accepts an empty body as the zero value.
func decodeOptionalJSON(r *http.Request, out any) error {
	if err := decodeJSON(r, out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
