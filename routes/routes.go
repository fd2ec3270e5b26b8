package routes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/tabletop-tournaments/docs"
	"github.com/Dosada05/tabletop-tournaments/handlers"
	"github.com/Dosada05/tabletop-tournaments/middleware"
	"github.com/Dosada05/tabletop-tournaments/models"
	"github.com/Dosada05/tabletop-tournaments/utils"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Tournament *handlers.TournamentHandler
	Entry      *handlers.EntryHandler
	Game       *handlers.GameHandler
	Score      *handlers.ScoreHandler
	Results    *handlers.ResultsHandler
	WebSocket  *handlers.WebSocketHandler
}

func SetupRoutes(r chi.Router, h Handlers, tokens *utils.TokenManager, allowedOrigins []string, logger *slog.Logger) {
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Telemetry(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Get("/ws/tournaments/{tournament}", h.WebSocket.ServeWs)

	authenticate := middleware.Authenticate(tokens)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
	})

	r.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.ListHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireRole(models.RoleOrganizer, models.RoleAdmin))
			r.Post("/", h.Tournament.CreateHandler)
		})

		r.Route("/{tournament}", func(r chi.Router) {
			// Публичные маршруты
			r.Get("/", h.Tournament.GetHandler)
			r.Get("/missions", h.Tournament.ListMissionsHandler)
			r.Get("/score_categories", h.Tournament.ListCategoriesHandler)
			r.Get("/entries", h.Entry.ListHandler)
			r.Get("/games", h.Game.ListHandler)
			r.Get("/games/{gameID}", h.Game.GetHandler)
			r.Get("/results", h.Results.GetHandler)

			// Требуют аутентификации
			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Put("/rounds", h.Tournament.SetRoundsHandler)
				r.Post("/missions", h.Tournament.SetMissionsHandler)
				r.Post("/score_categories", h.Tournament.SetCategoriesHandler)
				r.Post("/register", h.Entry.RegisterHandler)
				r.Post("/games", h.Game.CreateHandler)
				r.Post("/rounds/{round}/pairings", h.Game.PairHandler)
				r.Post("/scores", h.Score.EnterHandler)
				r.Post("/results/export", h.Results.ExportHandler)
			})
		})
	})
}
