package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/minjcho/cowlick/pkg/auction"
	"github.com/minjcho/cowlick/pkg/schema"
	"github.com/minjcho/cowlick/pkg/solver"
	"github.com/minjcho/cowlick/pkg/storage"
)

// SettlementsChannel is the websocket channel carrying one event per solved
// auction.
const SettlementsChannel = "settlements"

// Server exposes the solver over HTTP and broadcasts settlements over
// WebSocket.
type Server struct {
	solver  *solver.Solver
	archive *storage.Archive // nil disables archiving
	router  *mux.Router
	hub     *Hub
	origins []string
	log     *zap.SugaredLogger
}

// NewServer wires the solver and the optional archive into the HTTP surface.
func NewServer(sol *solver.Solver, archive *storage.Archive, origins []string, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{
		solver:  sol,
		archive: archive,
		router:  mux.NewRouter(),
		hub:     NewHub(log),
		origins: origins,
		log:     log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/notify", s.handleNotify).Methods("POST")
	s.router.HandleFunc("/solve", s.handleSolve).Methods("POST")
	s.router.HandleFunc("/archive", s.handleListArchive).Methods("GET")
	s.router.HandleFunc("/archive/{id}", s.handleGetArchived).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// Handler returns the routed handler with CORS applied, for serving or tests.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(s.router)
}

// Start runs the hub and serves until the listener fails.
func (s *Server) Start(addr string) error {
	go s.hub.Run()
	s.log.Infow("api_server_starting", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, true)
}

// handleNotify logs driver notifications and acknowledges them.
func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read body", err.Error())
		return
	}
	s.log.Infow("notify_received", "payload", string(body))
	respondJSON(w, true)
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read body", err.Error())
		return
	}

	var req schema.SolveRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON instance", err.Error())
		return
	}

	resp, err := s.solver.Solve(&req)
	if err != nil {
		respondError(w, statusFor(err), "instance rejected", err.Error())
		return
	}

	auctionID := req.ID.String()
	if s.archive != nil {
		if err := s.archive.SaveInstance(auctionID, body); err != nil {
			s.log.Errorw("archive_instance_failed", "auction", auctionID, "err", err)
		}
		if err := s.archive.SaveSolution(auctionID, resp); err != nil {
			s.log.Errorw("archive_solution_failed", "auction", auctionID, "err", err)
		}
	}

	if len(resp.Solutions) > 0 {
		sol := resp.Solutions[0]
		s.hub.BroadcastToChannel(SettlementsChannel, SettlementUpdate{
			Type:      "settlement",
			AuctionID: auctionID,
			Orders:    len(req.Orders),
			Trades:    len(sol.Trades),
			Prices:    sol.Prices,
			Timestamp: time.Now().UnixMilli(),
		})
	}

	s.log.Infow("solve_completed", "auction", auctionID)
	respondJSON(w, resp)
}

func (s *Server) handleListArchive(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		respondError(w, http.StatusNotFound, "archive disabled", "")
		return
	}
	ids, err := s.archive.ListInstanceIDs()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "archive read failed", err.Error())
		return
	}
	if ids == nil {
		ids = []string{}
	}
	respondJSON(w, ids)
}

func (s *Server) handleGetArchived(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		respondError(w, http.StatusNotFound, "archive disabled", "")
		return
	}
	id := mux.Vars(r)["id"]

	instance, ok, err := s.archive.LoadInstance(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "archive read failed", err.Error())
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "auction not archived", id)
		return
	}
	solution, _, err := s.archive.LoadSolution(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "archive read failed", err.Error())
		return
	}
	respondJSON(w, ArchiveEntry{ID: id, Instance: instance, Solution: solution})
}

// statusFor maps solver errors to HTTP codes: anything wrong with the
// instance itself is a 400, the rest is a 500.
func statusFor(err error) int {
	var missing *auction.MissingFieldError
	if errors.As(err, &missing) {
		return http.StatusBadRequest
	}
	for _, sentinel := range []error{
		auction.ErrInvalidAmount,
		auction.ErrEqualTokens,
		auction.ErrDuplicateOrder,
		auction.ErrDuplicatePool,
		auction.ErrUnknownToken,
		auction.ErrInvalidRate,
	} {
		if errors.Is(err, sentinel) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Message: message,
	})
}
