package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
	"github.com/justestif/go-playlist-matcher/internal/logging"
	"github.com/justestif/go-playlist-matcher/internal/recommend"
)

// maxBodyBytes bounds inline match request bodies.
const maxBodyBytes = 32 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	svc      *recommend.Service
	health   Pinger
	maxSongs int
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *recommend.Service, health Pinger, maxSongs int) *Handlers {
	return &Handlers{
		svc:      svc,
		health:   health,
		maxSongs: maxSongs,
	}
}

// matchRequest is the body of POST /api/match.
type matchRequest struct {
	Playlist analysis.Playlist `json:"playlist"`
	Songs    []analysis.Song   `json:"songs" validate:"min=1"`
	Limit    int               `json:"limit" validate:"gte=0"`
	Explain  bool              `json:"explain"`
	Group    bool              `json:"group"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Health reports liveness and, when configured, database reachability
// (GET /healthz).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Ping(r.Context()); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Match ranks inline songs against an inline playlist (POST /api/match).
func (h *Handlers) Match(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return
	}

	if err := h.validateMatch(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.MatchInline(r.Context(), req.Playlist, req.Songs, recommend.Options{
		Limit:   req.Limit,
		Explain: req.Explain,
		Group:   req.Group,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) validateMatch(req matchRequest) error {
	if req.Playlist.ID == "" {
		return errors.New("playlist.id is required")
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return err
	}
	if len(req.Songs) > h.maxSongs {
		return fmt.Errorf("at most %d songs per request", h.maxSongs)
	}
	return nil
}

// PlaylistMatches recommends stored songs for a stored playlist
// (GET /api/playlists/{id}/matches).
func (h *Handlers) PlaylistMatches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts, err := parseOptions(q.Get("limit"), q.Get("explain"), q.Get("group"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Recommend(r.Context(), recommend.Request{
		PlaylistID: chi.URLParam(r, "id"),
		UserID:     q.Get("user_id"),
		Options:    opts,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// LatestMatches returns the last persisted run for a playlist
// (GET /api/playlists/{id}/matches/latest).
func (h *Handlers) LatestMatches(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.LatestRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func parseOptions(limit, explain, group string) (recommend.Options, error) {
	var opts recommend.Options
	var err error

	if limit != "" {
		opts.Limit, err = strconv.Atoi(limit)
		if err != nil || opts.Limit < 0 {
			return opts, fmt.Errorf("invalid limit %q", limit)
		}
	}
	if explain != "" {
		if opts.Explain, err = strconv.ParseBool(explain); err != nil {
			return opts, fmt.Errorf("invalid explain %q", explain)
		}
	}
	if group != "" {
		if opts.Group, err = strconv.ParseBool(group); err != nil {
			return opts, fmt.Errorf("invalid group %q", group)
		}
	}
	return opts, nil
}

// writeServiceError maps service errors to HTTP statuses.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrPlaylistNotFound), errors.Is(err, recommend.ErrNoRuns):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, recommend.ErrNoStore):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "request timed out")
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to send.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("request cancelled")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("writing response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
