package devapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/DoyleJ11/bgg-shelf-mapper/pkg/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// errorResponse uses the same body shape as the production backend so the
// client shows identical messages against either.
type errorResponse struct {
	Detail string `json:"detail"`
}

type fixtureCreate struct {
	Name string `json:"name" validate:"required,max=200"`
	Rows int    `json:"rows" validate:"min=1,max=50"`
	Cols int    `json:"cols" validate:"min=1,max=50"`
}

var validate = validator.New()

type handler struct {
	store *Store
	log   *zap.Logger
}

// Router serves the shelf REST contract from an in-memory store.
func Router(store *Store, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &handler{store: store, log: log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Get("/fixtures", h.listFixtures)
		r.Post("/fixtures", h.createFixture)
		r.Get("/fixtures/{fixtureID}/grid", h.fixtureGrid)
		r.Get("/games", h.listGames)
		r.Put("/placements", h.upsertPlacement)
		r.Delete("/placements/{fixtureID}/{slot}", h.clearPlacement)
	})
	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *handler) listFixtures(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Fixtures())
}

func (h *handler) createFixture(w http.ResponseWriter, r *http.Request) {
	var req fixtureCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	f := h.store.AddFixture(req.Name, req.Rows, req.Cols)
	h.log.Info("fixture created", zap.Int("fixture_id", f.ID), zap.String("name", f.Name))
	respondJSON(w, http.StatusOK, f)
}

func (h *handler) fixtureGrid(w http.ResponseWriter, r *http.Request) {
	id, ok := fixtureIDParam(w, r)
	if !ok {
		return
	}
	grid, err := h.store.Grid(id)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, grid)
}

func (h *handler) listGames(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	respondJSON(w, http.StatusOK, h.store.Games(q))
}

func (h *handler) upsertPlacement(w http.ResponseWriter, r *http.Request) {
	var req types.PlacementUpsert
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	p, err := h.store.Place(req)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.log.Debug("placement upserted",
		zap.Int("fixture_id", p.FixtureID), zap.String("slot", p.Slot), zap.Int("game_id", p.GameID))
	respondJSON(w, http.StatusOK, p)
}

func (h *handler) clearPlacement(w http.ResponseWriter, r *http.Request) {
	id, ok := fixtureIDParam(w, r)
	if !ok {
		return
	}
	deleted, err := h.store.Clear(id, chi.URLParam(r, "slot"))
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (h *handler) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrFixtureNotFound), errors.Is(err, ErrGameNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrBadSlot), errors.Is(err, ErrSlotOutOfBounds):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("store failure", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func fixtureIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "fixtureID"))
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "fixture id must be an integer")
		return 0, false
	}
	return id, true
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, errorResponse{Detail: detail})
}
