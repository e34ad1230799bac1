package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/races", handler.ListRaces)
	mux.HandleFunc("GET /v1/races/open", handler.GetOpenRace)
	mux.HandleFunc("GET /v1/riders", handler.ListRiders)

	mux.HandleFunc("POST /v1/predictions", handler.SubmitPrediction)
	mux.HandleFunc("GET /v1/predictions/{raceID}", handler.GetPrediction)
	mux.HandleFunc("GET /v1/predictions/{raceID}/score", handler.GetPredictionScore)

	mux.HandleFunc("GET /v1/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/profiles/{userID}", handler.GetProfile)
	mux.HandleFunc("GET /v1/profiles/{userID}/achievements", handler.ListAchievements)
}

func registerInternalSyncRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /internal/sync", RequireBearerToken(internalJobToken, http.HandlerFunc(handler.RunSyncAll)))
	mux.Handle("POST /internal/sync/{sourceID}", RequireBearerToken(internalJobToken, http.HandlerFunc(handler.RunSync)))
	mux.Handle("GET /internal/sync/{sourceID}/runs", RequireBearerToken(internalJobToken, http.HandlerFunc(handler.ListSyncRuns)))
	mux.Handle("GET /internal/changes/{entityType}/{entityID}", RequireBearerToken(internalJobToken, http.HandlerFunc(handler.ListEntityChanges)))
}

func registerAdminRoundRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	mux.Handle("POST /admin/rounds/progress", RequireBearerToken(adminToken, http.HandlerFunc(handler.ProgressRound)))
	mux.Handle("POST /admin/rounds/digress", RequireBearerToken(adminToken, http.HandlerFunc(handler.DigressRound)))
	mux.Handle("POST /admin/rounds/reset", RequireBearerToken(adminToken, http.HandlerFunc(handler.ResetRounds)))
}
