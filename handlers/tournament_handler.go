package handlers

import (
	"net/http"

	"github.com/Dosada05/tabletop-tournaments/middleware"
	"github.com/Dosada05/tabletop-tournaments/services"
)

type TournamentHandler struct {
	tournamentService *services.TournamentService
}

func NewTournamentHandler(ts *services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

type setRoundsRequest struct {
	Rounds int `json:"rounds"`
}

type setMissionsRequest struct {
	Missions []string `json:"missions"`
}

type setCategoriesRequest struct {
	Categories []services.CategoryInput `json:"categories"`
}

// ListHandler godoc
// @Summary Список турниров
// @Tags tournaments
// @Produce json
// @Success 200 {array} models.Tournament
// @Failure 500 {object} map[string]string
// @Router /tournaments [get]
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.ListTournaments(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateHandler godoc
// @Summary Создать турнир
// @Description Доступно организаторам и администраторам. Раунды 1..N создаются вместе с турниром
// @Tags tournaments
// @Accept json
// @Produce json
// @Param input body services.CreateTournamentInput true "Турнир"
// @Success 201 {object} models.Tournament
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /tournaments [post]
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create tournament")
		return
	}

	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler godoc
// @Summary Турнир с раундами, категориями и участниками
// @Tags tournaments
// @Produce json
// @Param tournament path string true "Название турнира"
// @Success 200 {object} models.Tournament
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournament} [get]
func (h *TournamentHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	tournament, err := h.tournamentService.GetDetails(r.Context(), tournamentFromURL(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetRoundsHandler godoc
// @Summary Изменить число раундов
// @Tags tournaments
// @Accept json
// @Produce json
// @Param tournament path string true "Название турнира"
// @Param input body setRoundsRequest true "Число раундов"
// @Success 200 {object} models.Tournament
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /tournaments/{tournament}/rounds [put]
func (h *TournamentHandler) SetRoundsHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input setRoundsRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.SetRoundCount(r.Context(), actor, tournamentFromURL(r), input.Rounds)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMissionsHandler godoc
// @Summary Миссии по раундам
// @Tags tournaments
// @Produce json
// @Param tournament path string true "Название турнира"
// @Success 200 {array} string
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournament}/missions [get]
func (h *TournamentHandler) ListMissionsHandler(w http.ResponseWriter, r *http.Request) {
	missions, err := h.tournamentService.ListMissions(r.Context(), tournamentFromURL(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"missions": missions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetMissionsHandler godoc
// @Summary Задать миссии
// @Description Количество миссий должно совпадать с числом раундов
// @Tags tournaments
// @Accept json
// @Produce json
// @Param tournament path string true "Название турнира"
// @Param input body setMissionsRequest true "Миссии"
// @Success 200 {array} string
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Security BearerAuth
// @Router /tournaments/{tournament}/missions [post]
func (h *TournamentHandler) SetMissionsHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input setMissionsRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	missions, err := h.tournamentService.SetMissions(r.Context(), actor, tournamentFromURL(r), input.Missions)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"missions": missions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListCategoriesHandler godoc
// @Summary Категории очков
// @Tags tournaments
// @Produce json
// @Param tournament path string true "Название турнира"
// @Success 200 {array} models.ScoreCategory
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournament}/score_categories [get]
func (h *TournamentHandler) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.tournamentService.ListScoreCategories(r.Context(), tournamentFromURL(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"categories": categories}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetCategoriesHandler godoc
// @Summary Задать категории очков
// @Description Категории сопоставляются по имени. Отсутствующие удаляются, если по ним нет очков
// @Tags tournaments
// @Accept json
// @Produce json
// @Param tournament path string true "Название турнира"
// @Param input body setCategoriesRequest true "Категории"
// @Success 200 {array} models.ScoreCategory
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /tournaments/{tournament}/score_categories [post]
func (h *TournamentHandler) SetCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input setCategoriesRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	categories, err := h.tournamentService.SetScoreCategories(r.Context(), actor, tournamentFromURL(r), input.Categories)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"categories": categories}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
