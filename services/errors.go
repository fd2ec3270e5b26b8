package services

import (
	"errors"
	"strconv"
)

// Ошибки ввода очков. Handlers map them to status codes with errors.Is.
var (
	ErrUnknownCategory      = errors.New("unknown category")
	ErrUnknownEntrant       = errors.New("unknown entrant")
	ErrGameNotFound         = errors.New("game not found")
	ErrInvalidScore         = errors.New("invalid score")
	ErrCategoryGameMismatch = errors.New("category does not match game")
	ErrScoreAlreadySet      = errors.New("score is already set")
	ErrEntryNotFound        = errors.New("entry not found")

	ErrNoPerGameCategories = errors.New("tournament has no per-game score categories")
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	// Аутентификация и авторизация
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
	ErrUserNotFound         = errors.New("user not found")
	ErrUsernameConflict     = errors.New("username is already in use")

	// Турниры
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrTournamentInvalidDate  = errors.New("tournament date must be YYYY-MM-DD")
	ErrRoundNotFound          = errors.New("round not found")
	ErrRoundInUse             = errors.New("round already has games")
	ErrMissionCountMismatch   = errors.New("mission count must equal round count")

	// Категории
	ErrInvalidCategory   = errors.New("invalid score category")
	ErrDuplicateCategory = errors.New("score category named more than once")
	ErrCategoryInUse     = errors.New("score category has recorded scores")

	// Участники и игры
	ErrRegistrationConflict = errors.New("player is already registered for this tournament")
	ErrInvalidGame          = errors.New("a game needs one or two distinct entrants")
	ErrGameTableConflict    = errors.New("table already used in this round")
	ErrEntrantAlreadyPaired = errors.New("entrant already plays in this round")
	ErrNotEnoughEntrants    = errors.New("not enough entrants to pair a round")

	ErrExportUnavailable = errors.New("results export storage is not configured")
)

// ScoreError is returned by every step of score entry. Kind is one of the
// score sentinels above, so errors.Is(err, ErrInvalidScore) works on it.
type ScoreError struct {
	Kind       error
	Tournament string
	Category   string
	GameID     *int
	EntryID    int
	Score      string
	Detail     string
}

func (e *ScoreError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Kind.Error()
}

func (e *ScoreError) Unwrap() error {
	return e.Kind
}

func unknownCategoryError(tournament, category string) *ScoreError {
	return &ScoreError{
		Kind:       ErrUnknownCategory,
		Tournament: tournament,
		Category:   category,
		Detail:     "Unknown category: " + category,
	}
}

func unknownEntrantError(tournament string, entryID int) *ScoreError {
	return &ScoreError{
		Kind:       ErrUnknownEntrant,
		Tournament: tournament,
		EntryID:    entryID,
		Detail:     "Unknown entrant: " + strconv.Itoa(entryID),
	}
}
