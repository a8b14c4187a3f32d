package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Answers (batch document question answering)
	mux.HandleFunc("/api/answers", s.app.AnswerHandler.AnswersHandler)
	mux.HandleFunc("/api/answers/health", s.app.AnswerHandler.HealthHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	return mux
}
