package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"trading-journal-go/internal/ledger"
)

// APIServer exposes the reporting surface of the ledger engine to the
// dashboard: positions, tax liability, realized events, equity curve, and
// operation entry.
type APIServer struct {
	server  *http.Server
	service *Service
	logger  *zap.Logger
}

// NewAPIServer creates a new APIServer listening on the given port.
func NewAPIServer(service *Service, port int, logger *zap.Logger) *APIServer {
	s := &APIServer{
		service: service,
		logger:  logger.Named("api-server"),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", s.healthHandler)
	r.Route("/api", func(r chi.Router) {
		r.Get("/positions", s.positionsHandler)
		r.Get("/tax", s.taxHandler)
		r.Get("/wallet", s.walletHandler)
		r.Get("/events", s.eventsHandler)
		r.Get("/equity", s.equityHandler)
		r.Get("/performance", s.performanceHandler)
		r.Post("/operations", s.createOperationHandler)
	})

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}
	return s
}

// Start runs the HTTP server in a new goroutine.
func (s *APIServer) Start() {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *APIServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}

func (s *APIServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (s *APIServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// periodFromQuery reads ?year=, defaulting to the current calendar year.
// ?year=0 selects the unbounded period.
func periodFromQuery(r *http.Request) (ledger.Period, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return ledger.Year(time.Now().UTC().Year()), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return ledger.Period{}, fmt.Errorf("invalid year %q", raw)
	}
	if year == 0 {
		return ledger.Period{}, nil
	}
	return ledger.Year(year), nil
}

func (s *APIServer) positionsHandler(w http.ResponseWriter, r *http.Request) {
	positions, err := s.service.Positions(r.Context())
	if err != nil {
		s.logger.Error("Failed to compute positions", zap.Error(err))
		http.Error(w, "Failed to compute positions", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, positions)
}

func (s *APIServer) taxHandler(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, struct {
		Period    ledger.Period   `json:"period"`
		Liability decimal.Decimal `json:"liability"`
	}{Period: period, Liability: s.service.TaxLiability(period)})
}

func (s *APIServer) walletHandler(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, s.service.TaxWallet(period))
}

func (s *APIServer) eventsHandler(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	events := s.service.RealizedEvents(period)
	if events == nil {
		events = []ledger.RealizedGain{}
	}
	s.writeJSON(w, http.StatusOK, events)
}

func (s *APIServer) equityHandler(w http.ResponseWriter, r *http.Request) {
	var period ledger.Period
	query := r.URL.Query()
	if raw := query.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid from %q", raw), http.StatusBadRequest)
			return
		}
		period.Start = t
	}
	if raw := query.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid to %q", raw), http.StatusBadRequest)
			return
		}
		period.End = t
	}

	curve, err := s.service.EquityCurve(period)
	if err != nil {
		s.logger.Error("Failed to build equity curve", zap.Error(err))
		http.Error(w, "Failed to build equity curve", http.StatusInternalServerError)
		return
	}
	if curve == nil {
		curve = []ledger.EquityPoint{}
	}
	s.writeJSON(w, http.StatusOK, curve)
}

func (s *APIServer) performanceHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.Performance(time.Now().UTC()))
}

// operationRequest is the payload for recording a new operation.
type operationRequest struct {
	Symbol    string          `json:"symbol"`
	Side      string          `json:"side"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Fees      decimal.Decimal `json:"fees"`
	Timestamp time.Time       `json:"timestamp"`
	Note      string          `json:"note"`
}

func (s *APIServer) createOperationHandler(w http.ResponseWriter, r *http.Request) {
	var req operationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	events, err := s.service.RecordOperation(r.Context(), ledger.Operation{
		Symbol:    req.Symbol,
		Side:      req.Side,
		Quantity:  req.Quantity,
		Price:     req.Price,
		Fees:      req.Fees,
		Timestamp: req.Timestamp,
		Note:      req.Note,
	})
	if err != nil {
		var oversell *ledger.OversellError
		if errors.As(err, &oversell) {
			http.Error(w, oversell.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if events == nil {
		events = []ledger.RealizedGain{}
	}
	s.writeJSON(w, http.StatusCreated, events)
}
