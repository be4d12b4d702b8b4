package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/FinBoard/finboard-gateway/internal/auth"
	"github.com/FinBoard/finboard-gateway/internal/currency"
	"github.com/FinBoard/finboard-gateway/internal/events"
	"github.com/FinBoard/finboard-gateway/internal/upload"
	"go.uber.org/zap"
)

type sessionResponse struct {
	Token   string `json:"token"`
	Subject string `json:"subject"`
	Email   string `json:"email"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	s.handleCredentials(w, r, s.provider.SignUp)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	s.handleCredentials(w, r, s.provider.SignIn)
}

func (s *Server) handleCredentials(w http.ResponseWriter, r *http.Request,
	call func(ctx context.Context, creds auth.Credentials) (auth.Identity, error)) {

	var creds auth.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	id, err := call(r.Context(), creds)
	if err != nil {
		s.writeAuthError(w, err)
		return
	}
	tok, err := s.sessions.Mint(id.Subject)
	if err != nil {
		s.log.Error("session mint failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := s.bus.Emit(events.TopicSessionStarted, events.SessionStarted{Subject: id.Subject}); err != nil {
		s.log.Warn("session event dropped", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: tok, Subject: id.Subject, Email: id.Email})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token   string `json:"token"`
		Purpose string `json:"purpose"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := s.provider.VerifyToken(r.Context(), req.Token, req.Purpose); err != nil {
		s.writeAuthError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	default:
		http.Error(w, "auth provider unavailable", http.StatusBadGateway)
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	files, err := s.store.List()
	if err != nil {
		s.log.Error("upload listing failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.mu.RLock()
	preferred := s.preferred
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"preferred_currency": preferred,
		"uploads":            files,
		"upload_count":       len(files),
		"server_time":        time.Now().UTC(),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer f.Close()

	meta, err := s.store.Save(hdr.Filename, f)
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
		return
	case errors.Is(err, upload.ErrBadName):
		http.Error(w, "bad file name", http.StatusBadRequest)
		return
	case err != nil:
		s.log.Error("upload failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.rec.UploadStored()
	if err := s.bus.Emit(events.TopicUploadCompleted, events.UploadCompleted{Name: meta.Name, Size: meta.Size}); err != nil {
		s.log.Warn("upload event dropped", zap.Error(err))
	}
	writeJSON(w, http.StatusCreated, meta)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := strconv.ParseFloat(q.Get("amount"), 64)
	if err != nil {
		s.rec.ConversionServed("invalid")
		http.Error(w, "bad amount", http.StatusBadRequest)
		return
	}
	from := currency.Code(q.Get("from"))
	to := currency.Code(q.Get("to"))

	res, err := s.conv.Convert(r.Context(), amount, from, to)
	switch {
	case errors.Is(err, currency.ErrInvalidAmount),
		errors.Is(err, currency.ErrUnsupportedCurrency):
		s.rec.ConversionServed("invalid")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, currency.ErrRateUnavailable):
		s.rec.ConversionServed("unavailable")
		http.Error(w, "rate service unavailable", http.StatusBadGateway)
		return
	case err != nil:
		s.rec.ConversionServed("error")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.rec.ConversionServed("ok")
	writeJSON(w, http.StatusOK, map[string]any{
		"amount": res.Amount,
		"rate":   res.Rate,
		"from":   from,
		"to":     to,
	})
}

func (s *Server) handlePreference(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code currency.Code `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !currency.Supported(req.Code) {
		http.Error(w, "unsupported currency", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.preferred = req.Code
	s.mu.Unlock()

	if err := s.bus.Emit(events.TopicCurrencyChanged, events.CurrencyChanged{Code: string(req.Code)}); err != nil {
		s.log.Warn("currency change event dropped", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]any{"code": req.Code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
