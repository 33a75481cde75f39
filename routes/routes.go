package routes

import (
	"net/http"

	_ "github.com/Dosada05/badminton-doubles/docs"
	"github.com/Dosada05/badminton-doubles/handlers"
	"github.com/Dosada05/badminton-doubles/middleware"
	"github.com/Dosada05/badminton-doubles/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Player      *handlers.PlayerHandler
	Tournament  *handlers.TournamentHandler
	Match       *handlers.MatchHandler
	Leaderboard *handlers.LeaderboardHandler
	Dashboard   *handlers.DashboardHandler
	WebSocket   *handlers.WebSocketHandler
	Health      *handlers.HealthHandler
}

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", h.Health.Health)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Route("/ws", func(r chi.Router) {
		r.Get("/lobby", h.WebSocket.ServeLobby)
		r.Get("/tournaments/{tournamentID}", h.WebSocket.ServeTournament)
	})

	organizerOnly := func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.JWTSecret))
		r.Use(middleware.Authorize(models.RoleOrganizer))
	}

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Auth.Login)
		r.Get("/leaderboard", h.Leaderboard.Overall)

		r.Route("/players", func(r chi.Router) {
			// Публичные маршруты
			r.Get("/", h.Player.List)
			r.Get("/{playerID}", h.Player.Get)

			// Только организатор
			r.Group(func(r chi.Router) {
				organizerOnly(r)
				r.Post("/", h.Player.Create)
				r.Put("/{playerID}", h.Player.Update)
				r.Delete("/{playerID}", h.Player.Delete)
				r.Post("/{playerID}/avatar", h.Player.UploadAvatar)
			})
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.List)
			r.Get("/{tournamentID}", h.Tournament.Get)
			r.Get("/{tournamentID}/matches", h.Tournament.Matches)
			r.Get("/{tournamentID}/leaderboard", h.Tournament.Leaderboard)

			r.Group(func(r chi.Router) {
				organizerOnly(r)
				r.Post("/", h.Tournament.Create)
				r.Post("/{tournamentID}/regenerate", h.Tournament.Regenerate)
				r.Post("/{tournamentID}/complete", h.Tournament.Complete)
				r.Delete("/{tournamentID}", h.Tournament.Delete)
			})
		})

		r.Group(func(r chi.Router) {
			organizerOnly(r)
			r.Put("/matches/{matchID}/score", h.Match.SubmitScore)
			r.Get("/dashboard", h.Dashboard.Stats)
		})
	})
}
