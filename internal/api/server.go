package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"gold_price/internal/domain"
	"gold_price/internal/infra"
)

// PriceService is what the transport needs from the price cache
type PriceService interface {
	domain.PriceReader
	domain.PriceRefresher
}

// Server exposes the cached gold price over HTTP/JSON and WebSocket
type Server struct {
	cfg      *infra.Config
	prices   PriceService
	hub      *StreamHub
	metrics  *infra.Metrics
	interval time.Duration
	logger   *slog.Logger
	srv      *http.Server
}

func NewServer(cfg *infra.Config, prices PriceService, hub *StreamHub, metrics *infra.Metrics, logger *slog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		prices:   prices,
		hub:      hub,
		metrics:  metrics,
		interval: cfg.RefreshInterval(),
		logger:   logger,
	}
}

// Handler returns the routed handler wrapped in CORS and request logging
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /api/gold-price", s.handleGoldPrice)
	mux.HandleFunc("POST /api/gold-price/update", s.handleUpdate)
	mux.HandleFunc("GET /api/gold-price/stream", s.handleStream)
	mux.HandleFunc("GET /api/status", s.handleStatus)

	return logRequests(s.logger, cors(s.cfg.Server.AllowedOrigins, mux))
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout())
		defer cancel()
		s.hub.Close()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("http server shutdown", slog.Any("error", err))
		}
	}()

	s.logger.Info("http server starting", slog.String("addr", s.cfg.Server.Addr))
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"service":   "gold-price-backend",
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Welcome to the Gold Price Backend Service. Use /api/gold-price to get the current gold price."))
}

func (s *Server) handleGoldPrice(w http.ResponseWriter, r *http.Request) {
	rec, since, ok := s.prices.Snapshot()
	if !ok {
		s.logger.Info("No cached data available, service may be initializing")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:   domain.ErrNoData.Error(),
			Message: "Service is initializing, please try again in a moment",
		})
		return
	}

	writeJSON(w, http.StatusOK, priceResponse{
		Success: true,
		Data:    newPriceData(rec),
		Meta: priceMeta{
			LastUpdated:         rec.FetchedAt,
			TimeSinceLastUpdate: since,
			NextUpdateIn:        s.nextUpdateIn(since),
			Source:              source,
		},
	})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("Manual update requested via API")

	if err := s.prices.Refresh(r.Context()); err != nil {
		s.logger.Error("Manual update failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to update gold price",
			Message: err.Error(),
		})
		return
	}

	rec, _ := s.prices.CachedData()
	writeJSON(w, http.StatusOK, updateResponse{
		Success: true,
		Data:    newPriceData(rec),
		Message: "Gold price updated successfully",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	rec, since, warm := s.prices.Snapshot()

	resp := map[string]any{
		"service":             s.cfg.App.Name,
		"version":             s.cfg.App.Version,
		"status":              "initializing",
		"lastUpdated":         nil,
		"timeSinceLastUpdate": nil,
		"nextUpdateIn":        s.nextUpdateIn(since),
		"cacheStatus":         "cold",
		"currentPrice":        nil,
		"metrics":             s.metrics.Snapshot(),
	}
	if warm {
		resp["status"] = "operational"
		resp["cacheStatus"] = "warm"
		resp["currentPrice"] = rec.Price.InexactFloat64()
		resp["lastUpdated"] = rec.FetchedAt
		resp["timeSinceLastUpdate"] = since
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(w, r, s.prices.CachedData)
}

// nextUpdateIn estimates minutes until the next scheduled refresh
func (s *Server) nextUpdateIn(since float64) float64 {
	return max(0, s.interval.Minutes()-since)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
