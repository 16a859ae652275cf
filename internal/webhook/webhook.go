// Package webhook serves the payment provider callback.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"estate_bot/internal/model"
	"estate_bot/internal/render"
	"estate_bot/internal/storage"
)

// Store is the subset of storage the webhook needs.
type Store interface {
	GetInvoice(ctx context.Context, token string) (model.Invoice, error)
	DeleteInvoice(ctx context.Context, token string) error
	RenewSubscription(ctx context.Context, userID int64, days int) (model.Subscription, error)
	GetFilter(ctx context.Context, userID int64) (model.Filter, error)
}

// Notifier sends a plain text message to a chat.
type Notifier interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

type callback struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Amount  string `json:"amount"`
	UUID    string `json:"uuid"`
}

// Server handles payment callbacks.
type Server struct {
	store       Store
	notifier    Notifier
	allowedIP   string
	logsChannel int64
	log         *slog.Logger
	router      chi.Router
}

// New creates a Server accepting callbacks only from allowedIP and reporting
// accepted payments to logsChannel when it is set.
func New(store Store, notifier Notifier, allowedIP string, logsChannel int64, log *slog.Logger) *Server {
	s := &Server{
		store:       store,
		notifier:    notifier,
		allowedIP:   allowedIP,
		logsChannel: logsChannel,
		log:         log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/webhook", s.handleWebhook)

	s.router = r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("webhook server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown webhook server: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ip := clientIP(r)
	if ip != s.allowedIP {
		s.log.Warn("webhook: invalid ip", "ip", ip)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var cb callback
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
		s.log.Warn("webhook: decode body", "ip", ip, "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	s.log.Info("webhook: received", "order_id", cb.OrderID, "status", cb.Status, "amount", cb.Amount, "uuid", cb.UUID)

	if cb.OrderID == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	inv, err := s.store.GetInvoice(ctx, cb.OrderID)
	if errors.Is(err, storage.ErrInvoiceNotFound) {
		s.log.Warn("webhook: invoice not found", "order_id", cb.OrderID)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err != nil {
		s.log.Error("webhook: get invoice", "order_id", cb.OrderID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if cb.Status != "paid" && cb.Status != "paid_over" {
		s.log.Warn("webhook: payment not successful", "order_id", cb.OrderID, "status", cb.Status)
		writeJSON(w, http.StatusOK, map[string]string{"status": "unknown status " + cb.Status})
		return
	}

	if err := s.store.DeleteInvoice(ctx, cb.OrderID); err != nil {
		s.log.Error("webhook: delete invoice", "order_id", cb.OrderID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	sub, err := s.store.RenewSubscription(ctx, inv.UserID, inv.Days)
	if err != nil {
		s.log.Error("webhook: renew subscription", "user_id", inv.UserID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.notifyUser(ctx, inv.UserID, sub)
	s.notifyLogs(ctx, fmt.Sprintf("crypto payment accepted: user_id=%d price=%d days=%d", inv.UserID, inv.Price, inv.Days))

	s.log.Info("webhook: applied", "order_id", cb.OrderID, "user_id", inv.UserID, "expired_at", sub.ExpiredAt.Format(time.DateOnly))
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) notifyUser(ctx context.Context, userID int64, sub model.Subscription) {
	lang := model.LangEN
	if f, err := s.store.GetFilter(ctx, userID); err == nil {
		lang = f.Lang
	}
	text := fmt.Sprintf(render.Text(lang, "payment.accepted"), sub.ExpiredAt.Format(time.DateOnly))
	if err := s.notifier.SendText(ctx, sub.ChatID, text); err != nil {
		s.log.Warn("webhook: notify user", "user_id", userID, "error", err)
	}
}

func (s *Server) notifyLogs(ctx context.Context, text string) {
	if s.logsChannel == 0 {
		return
	}
	if err := s.notifier.SendText(ctx, s.logsChannel, text); err != nil {
		s.log.Warn("webhook: notify logs channel", "error", err)
	}
}

// clientIP prefers the first X-Forwarded-For entry over the peer address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
