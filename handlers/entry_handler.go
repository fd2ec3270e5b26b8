package handlers

import (
	"net/http"

	"github.com/Dosada05/tabletop-tournaments/middleware"
	"github.com/Dosada05/tabletop-tournaments/services"
)

type EntryHandler struct {
	entryService *services.EntryService
}

func NewEntryHandler(es *services.EntryService) *EntryHandler {
	return &EntryHandler{entryService: es}
}

type registerEntryRequest struct {
	Username string `json:"username"`
}

// RegisterHandler godoc
// @Summary Зарегистрировать участника
// @Description Без username регистрируется текущий пользователь
// @Tags entries
// @Accept json
// @Produce json
// @Param tournament path string true "Название турнира"
// @Param input body registerEntryRequest false "Игрок"
// @Success 201 {object} models.Entry
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /tournaments/{tournament}/register [post]
func (h *EntryHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to register")
		return
	}

	var input registerEntryRequest
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	entry, err := h.entryService.Register(r.Context(), actor, tournamentFromURL(r), input.Username)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"entry": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EntryHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entryService.ListEntries(r.Context(), tournamentFromURL(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entries": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
