package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
	"github.com/vncsmyrnk/idolvote/internal/utils"
)

type Handlers struct {
	Auth        *AuthHandler
	Contestants *ContestantHandler
	Windows     *WindowHandler
	Votes       *VoteHandler
	Dashboard   *DashboardHandler
}

type RouterOptions struct {
	AllowedOrigins []string
	ImageDir       string
}

func NewHandler(auth ports.AuthService, h Handlers, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Idol Voting API!"})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if opts.ImageDir != "" {
		fs := http.StripPrefix("/images/", http.FileServer(http.Dir(opts.ImageDir)))
		r.Get("/images/*", fs.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/send-otp", h.Auth.SendOTP)
			r.Post("/verify-otp", h.Auth.VerifyOTP)
		})

		r.Get("/contestants", h.Contestants.ListContestants)

		r.Route("/vote", func(r chi.Router) {
			r.Use(RequireUser(auth))
			r.Get("/state", h.Votes.VotingState)
			r.Post("/submit", h.Votes.SubmitVotes)
			r.Get("/history", h.Votes.History)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Auth.AdminLogin)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin(auth))
				r.Post("/contestants", h.Contestants.CreateContestant)

				r.Route("/voting-windows", func(r chi.Router) {
					r.Post("/", h.Windows.CreateWindow)
					r.Get("/", h.Windows.ListWindows)
					r.Patch("/{id}/activate", h.Windows.ActivateWindow)
					r.Patch("/{id}/deactivate", h.Windows.DeactivateWindow)
				})

				r.Get("/dashboard-stats/{id}", h.Dashboard.DashboardStats)
			})
		})
	})

	co := cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return co.Handler(r)
}
