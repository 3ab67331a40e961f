package api

import (
	"net/http"

	"github.com/eventconnect/server/internal/api/handlers"
	"github.com/eventconnect/server/internal/api/middleware"
	"github.com/eventconnect/server/internal/auth"
	"github.com/eventconnect/server/internal/config"
	"github.com/eventconnect/server/internal/domain/events"
	"github.com/eventconnect/server/internal/domain/memberships"
	"github.com/eventconnect/server/internal/domain/users"
	"github.com/eventconnect/server/internal/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Stores bundles the repository interfaces the router needs. Tests substitute
// stubs; production passes the postgres repositories. The transaction runners
// may be nil, which leaves the upsert paths non-transactional.
type Stores struct {
	Users       users.Repository
	Events      events.Repository
	Memberships memberships.Repository
	UsersTx     users.TxRunner
	EventsTx    events.TxRunner
}

// NewRouter wires services, handlers and middleware over the given stores.
// The pool is only used for the readiness probe and may be nil in tests.
//
// GET /event/{id} and POST /event/{token} share a path shape, so routes are
// method-qualified; the mux answers 405 with an Allow header on its own.
// Each route is wrapped with its rate-limit tier; health and metrics stay
// unlimited.
func NewRouter(cfg config.Config, logger zerolog.Logger, pool *pgxpool.Pool, stores Stores) http.Handler {
	usersService := users.NewService(stores.Users, stores.UsersTx, cfg.Database.QueryTimeout, logger)
	eventsService := events.NewService(stores.Events, stores.Memberships, stores.EventsTx, cfg.Database.QueryTimeout, logger)

	resolver := auth.NewResolver(stores.Users)
	authorizer := auth.NewBasicAuthorizer(stores.Users, stores.Events)

	usersHandler := handlers.NewUsersHandler(usersService, eventsService, resolver, authorizer, cfg.Environment)
	eventsHandler := handlers.NewEventsHandler(eventsService, resolver, authorizer, cfg.Environment)

	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	public := func(h http.HandlerFunc) http.Handler { return limiter.Tier(middleware.TierPublic)(h) }
	write := func(h http.HandlerFunc) http.Handler { return limiter.Tier(middleware.TierWrite)(h) }

	mux := http.NewServeMux()
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(pool))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("GET /users", public(usersHandler.List))
	mux.Handle("POST /user", write(usersHandler.Create))
	mux.Handle("GET /user/events/{token}", public(usersHandler.JoinedEvents))
	mux.Handle("GET /user/{id}", public(usersHandler.Get))
	mux.Handle("PUT /user/{id}/{token}", write(usersHandler.Upsert))
	mux.Handle("DELETE /user/{id}/{token}", write(usersHandler.Delete))

	mux.Handle("GET /events", public(eventsHandler.List))
	mux.Handle("GET /event/{id}", public(eventsHandler.Get))
	mux.Handle("POST /event/{token}", write(eventsHandler.Create))
	mux.Handle("PUT /event/{eventId}/join/{token}", write(eventsHandler.Join))
	mux.Handle("PUT /event/{id}/{token}", write(eventsHandler.Upsert))
	mux.Handle("DELETE /event/{id}/{token}", write(eventsHandler.Delete))

	var handler http.Handler = mux
	handler = middleware.Metrics(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}
