package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/Dosada05/tabletop-tournaments/middleware"
	"github.com/Dosada05/tabletop-tournaments/services"
)

type ScoreHandler struct {
	scoreService *services.ScoreService
	authorizer   *services.Authorizer
}

func NewScoreHandler(ss *services.ScoreService, authorizer *services.Authorizer) *ScoreHandler {
	return &ScoreHandler{scoreService: ss, authorizer: authorizer}
}

// Очки принимаются и числом, и строкой: "15" и 15 равнозначны.
type enterScoreRequest struct {
	Score     json.RawMessage `json:"score" swaggertype:"string"`
	Category  string          `json:"category"`
	GameID    *int            `json:"game_id,omitempty"`
	EntrantID int             `json:"entrant_id"`
}

func (req enterScoreRequest) rawScore() string {
	raw := bytes.TrimSpace(req.Score)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return string(raw)
		}
		return s
	}
	return string(raw)
}

// EnterHandler godoc
// @Summary Ввести очки
// @Description Записывает очки участника в категории за игру или за турнир. Повторная запись того же значения не является ошибкой
// @Tags scores
// @Accept json
// @Produce json
// @Param tournament path string true "Название турнира"
// @Param input body enterScoreRequest true "Очки"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /tournaments/{tournament}/scores [post]
func (h *ScoreHandler) EnterHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to enter scores")
		return
	}

	var input enterScoreRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament := tournamentFromURL(r)
	sub, err := services.NewScoreSubmission(tournament, input.Category, input.GameID, input.EntrantID, input.rawScore())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := h.authorizer.CanEnterScore(r.Context(), actor, sub.Tournament(), sub.EntrantID()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	result, err := h.scoreService.EnterScore(r.Context(), sub)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": result.Message}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
