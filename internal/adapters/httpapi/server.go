package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alejandrodnm/sniperbot/internal/ports"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
	maxCandleLimit      = 5000
)

// Backtester ejecuta un backtest completo para una consulta.
type Backtester interface {
	Run(ctx context.Context, q ports.CandleQuery) (ports.Report, error)
}

// Server expone los backtests por HTTP.
//
//	GET  /healthz
//	POST /backtests                  {"symbol","interval","limit"}
//	GET  /backtests?limit=N          resúmenes recientes
//	GET  /backtests/{runID}/trades   trades de una ejecución
type Server struct {
	bt       Backtester
	history  ports.SummaryHistory
	trades   ports.TradeHistory
	defaults ports.CandleQuery
}

// NewServer crea el servidor. history y trades pueden ser nil (sin storage):
// sus endpoints responden 503.
func NewServer(bt Backtester, history ports.SummaryHistory, trades ports.TradeHistory, defaults ports.CandleQuery) *Server {
	return &Server{bt: bt, history: history, trades: trades, defaults: defaults}
}

// Router devuelve el http.Handler con todas las rutas.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/backtests", func(r chi.Router) {
		r.Post("/", s.handleRun)
		r.Get("/", s.handleHistory)
		r.Get("/{runID}/trades", s.handleTrades)
	})
	return r
}

// ListenAndServe sirve en addr hasta que ctx se cancela y luego cierra ordenadamente.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("httpapi.ListenAndServe: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("httpapi.ListenAndServe: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("httpapi.ListenAndServe: %w", err)
	}
	return nil
}

type runRequest struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Limit    int    `json:"limit"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
			return
		}
	}

	q := s.defaults
	if req.Symbol != "" {
		q.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	}
	if req.Interval != "" {
		q.Interval = req.Interval
	}
	if req.Limit != 0 {
		q.Limit = req.Limit
	}
	if q.Symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	if q.Limit < 0 || q.Limit > maxCandleLimit {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 0 and %d", maxCandleLimit))
		return
	}

	report, err := s.bt.Run(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toReportDTO(report))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "storage disabled")
		return
	}
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxHistoryLimit))
			return
		}
		limit = n
	}

	records, err := s.history.RecentSummaries(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]summaryRecordDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, toSummaryRecordDTO(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	if s.trades == nil {
		writeError(w, http.StatusServiceUnavailable, "storage disabled")
		return
	}
	runID := chi.URLParam(r, "runID")

	trades, err := s.trades.RunTrades(r.Context(), runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]tradeDTO, 0, len(trades))
	for _, t := range trades {
		out = append(out, toTradeDTO(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// requestLogger registra cada request con slog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
