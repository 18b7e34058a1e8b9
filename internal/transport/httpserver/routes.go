package httpserver

import (
	"net/http"

	"community-grocery-go/internal/config"
	"community-grocery-go/internal/transport/httpserver/handler"
	authmw "community-grocery-go/internal/transport/httpserver/middleware"
	"community-grocery-go/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, auth *authmw.JWTAuth, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(authmw.RequestLogger(log))
	r.Use(authmw.NewCORS(cfg.CORSOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Post("/auth/register", handlers.Register)
		r.Post("/auth/login", handlers.Login)

		r.Get("/article", handlers.ListArticles)
		r.Get("/article/{id}", handlers.GetArticle)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.AuthMe)

			r.Post("/community", handlers.CreateCommunity)
			r.Get("/community", handlers.ListCommunities)
			r.Get("/community/{id}", handlers.GetCommunity)
			r.Post("/community/{id}/join", handlers.JoinCommunity)
			r.Post("/community/{id}/leave", handlers.LeaveCommunity)
			r.Get("/community/{id}/members", handlers.ListCommunityMembers)
			r.Put("/community/{id}/preferences", handlers.UpdatePreferences)
			r.Post("/community/{id}/vote", handlers.Vote)
			r.Get("/community/{id}/votes", handlers.GetVotes)

			r.Post("/article", handlers.CreateArticle)
			r.Put("/article/{id}", handlers.UpdateArticle)
			r.Delete("/article/{id}", handlers.DeleteArticle)

			r.Get("/order", handlers.ListOrders)
			r.Post("/order", handlers.CreateOrder)
			r.Get("/order/{id}", handlers.GetOrder)
			r.Delete("/order/{id}/delete", handlers.DeleteOrder)
		})
	})

	return r
}
