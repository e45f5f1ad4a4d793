package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/wricardo/roversim/logging"
	"github.com/wricardo/roversim/rover/engine"
	"github.com/wricardo/roversim/rover/mission"
	"github.com/wricardo/roversim/rover/program"
	"github.com/wricardo/roversim/rover/service"
	"github.com/wricardo/roversim/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.RoverService
	hub     *websocket.Hub
	logger  logging.Logger
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil to disable /ws.
func NewServer(roverService service.RoverService, hub *websocket.Hub, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	s := &Server{
		service: roverService,
		hub:     hub,
		logger:  logger,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)

	api := s.router.PathPrefix("/api").Subrouter()
	api.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)

	api.HandleFunc("", s.handleIndex).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Simulation
	api.HandleFunc("/simulate", s.handleSimulate).Methods("POST")

	// Missions
	api.HandleFunc("/missions", s.handleListMissions).Methods("GET")
	api.HandleFunc("/missions/{name}", s.handleGetMission).Methods("GET")
	api.HandleFunc("/missions/{name}", s.handleSaveMission).Methods("POST", "PUT")
	api.HandleFunc("/missions/{name}/run", s.handleRunMission).Methods("POST")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path))
}

// respondServiceError maps service errors onto HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	body := map[string]string{"error": err.Error()}
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, mission.ErrInvalidMission):
		status = http.StatusBadRequest
		body["kind"] = "invalid_mission"
	case errors.Is(err, engine.ErrInvalidInput):
		status = http.StatusBadRequest
		body["kind"] = engine.ErrorKind(err)
	case errors.Is(err, program.ErrSyntax):
		status = http.StatusBadRequest
		body["kind"] = "program_syntax"
	case errors.Is(err, mission.ErrMissionNotFound):
		status = http.StatusNotFound
		body["kind"] = "mission_not_found"
	}

	respondJSON(w, status, body)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"grid_size":    engine.GridSize,
		"facings":      []string{"N", "E", "S", "W"},
		"instructions": []string{"F", "L", "R"},
		"endpoints": []string{
			"POST /api/simulate",
			"GET /api/missions",
			"GET /api/missions/{name}",
			"POST /api/missions/{name}",
			"POST /api/missions/{name}/run",
			"GET /ws?run=<run_id>",
		},
	})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req service.SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Simulate(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.logger.Info("simulate",
		logging.String("run_id", result.RunID),
		logging.String("final", result.Final.String()),
		logging.Int("scuffs", result.Scuffs),
	)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListMissions(w http.ResponseWriter, r *http.Request) {
	missions, err := s.service.ListMissions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if missions == nil {
		missions = []*mission.Info{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(missions),
		"missions": missions,
	})
}

func (s *Server) handleGetMission(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	m, err := s.service.GetMission(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, m)
}

func (s *Server) handleSaveMission(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var m mission.Mission
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.SaveMission(r.Context(), name, &m); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message":    fmt.Sprintf("Mission %s saved", name),
		"mission_id": name,
	})
}

func (s *Server) handleRunMission(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	result, err := s.service.RunMission(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.logger.Info("mission run",
		logging.String("mission", name),
		logging.String("final", result.Final.String()),
		logging.Int("scuffs", result.Scuffs),
		logging.Bool("matched", result.Expectation != nil && result.Expectation.Matched),
	)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket streaming disabled", http.StatusServiceUnavailable)
		return
	}
	s.hub.ServeWS(w, r, r.URL.Query().Get("run"))
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
