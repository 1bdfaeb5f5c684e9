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

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/matches", RequireAuth(verifier, http.HandlerFunc(handler.CreateMatch)))
	mux.Handle("GET /v1/matches", RequireAuth(verifier, http.HandlerFunc(handler.ListMyMatches)))
	mux.Handle("GET /v1/matches/{matchID}", RequireAuth(verifier, http.HandlerFunc(handler.GetMatch)))
	mux.Handle("DELETE /v1/matches/{matchID}", RequireAuth(verifier, http.HandlerFunc(handler.DeleteMatch)))
	mux.Handle("GET /v1/matches/{matchID}/analysis", RequireAuth(verifier, http.HandlerFunc(handler.GetMatchAnalysis)))
	mux.Handle("GET /v1/analysis/jobs/{jobID}", RequireAuth(verifier, http.HandlerFunc(handler.GetJobAnalysis)))

	mux.Handle("PUT /v1/users/me", RequireAuth(verifier, http.HandlerFunc(handler.UpsertMe)))
	mux.Handle("GET /v1/users/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMe)))

	mux.Handle("POST /v1/media/videos", RequireAuth(verifier, http.HandlerFunc(handler.UploadVideo)))
	mux.Handle("POST /v1/media/heatmaps", RequireAuth(verifier, http.HandlerFunc(handler.UploadHeatmap)))
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/poll-analysis", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunAnalysisPoll)))
	mux.Handle("POST /v1/internal/analysis/callback", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.AnalysisCallback)))
}
