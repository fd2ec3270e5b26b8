package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dosada05/tabletop-tournaments/middleware"
	"github.com/Dosada05/tabletop-tournaments/services"
)

type GameHandler struct {
	gameService  *services.GameService
	scoreService *services.ScoreService
}

func NewGameHandler(gs *services.GameService, ss *services.ScoreService) *GameHandler {
	return &GameHandler{gameService: gs, scoreService: ss}
}

// ListHandler godoc
// @Summary Игры турнира
// @Tags games
// @Produce json
// @Param tournament path string true "Название турнира"
// @Param round query int false "Номер раунда"
// @Success 200 {array} models.Game
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournament}/games [get]
func (h *GameHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var round *int
	if raw := r.URL.Query().Get("round"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequestResponse(w, r, fmt.Errorf("invalid round: %q", raw))
			return
		}
		round = &n
	}

	games, err := h.gameService.ListGames(r.Context(), tournamentFromURL(r), round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateHandler godoc
// @Summary Создать игру вручную
// @Tags games
// @Accept json
// @Produce json
// @Param tournament path string true "Название турнира"
// @Param input body services.CreateGameInput true "Игра"
// @Success 201 {object} models.Game
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /tournaments/{tournament}/games [post]
func (h *GameHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.CreateGameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.CreateGame(r.Context(), actor, tournamentFromURL(r), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PairHandler godoc
// @Summary Сгенерировать пары раунда
// @Description Круговая система; при нечетном числе участников один получает bye
// @Tags games
// @Produce json
// @Param tournament path string true "Название турнира"
// @Param round path int true "Номер раунда"
// @Success 201 {array} models.Game
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /tournaments/{tournament}/rounds/{round}/pairings [post]
func (h *GameHandler) PairHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	round, err := getIDFromURL(r, "round")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	games, err := h.gameService.PairRound(r.Context(), actor, tournamentFromURL(r), round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler godoc
// @Summary Статус подсчета очков игры
// @Tags games
// @Produce json
// @Param tournament path string true "Название турнира"
// @Param gameID path int true "ID игры"
// @Success 200 {object} services.GameScoringReport
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournament}/games/{gameID} [get]
func (h *GameHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.scoreService.GameScoringStatus(r.Context(), tournamentFromURL(r), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, report, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
