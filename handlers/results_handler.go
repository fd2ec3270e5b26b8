package handlers

import (
	"net/http"

	"github.com/Dosada05/tabletop-tournaments/middleware"
	"github.com/Dosada05/tabletop-tournaments/services"
)

type ResultsHandler struct {
	resultsService *services.ResultsService
}

func NewResultsHandler(rs *services.ResultsService) *ResultsHandler {
	return &ResultsHandler{resultsService: rs}
}

// GetHandler godoc
// @Summary Итоговая таблица
// @Description Суммы по категориям и взвешенный итог, сортировка по итогу
// @Tags results
// @Produce json
// @Param tournament path string true "Название турнира"
// @Success 200 {object} models.TournamentResults
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournament}/results [get]
func (h *ResultsHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	results, err := h.resultsService.Results(r.Context(), tournamentFromURL(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, results, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExportHandler godoc
// @Summary Выгрузить результаты в хранилище
// @Tags results
// @Produce json
// @Param tournament path string true "Название турнира"
// @Success 201 {object} services.ExportResult
// @Failure 403 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Security BearerAuth
// @Router /tournaments/{tournament}/results/export [post]
func (h *ResultsHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	export, err := h.resultsService.ExportResults(r.Context(), actor, tournamentFromURL(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, export, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
