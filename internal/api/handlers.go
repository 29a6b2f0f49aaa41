package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/larsks/gpiobuttond/internal/controller"
)

// APIResponse is the single envelope used for every response, success
// or error.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// buttonStatus is the wire representation of one button's recognized
// state.
type buttonStatus struct {
	Name                 string `json:"name"`
	PinID                int    `json:"pin_id"`
	Pressed              bool   `json:"pressed"`
	LongPressed          bool   `json:"long_pressed"`
	DoubleClickTimeoutMs int64  `json:"double_click_timeout_ms"`
	LongPressTimeoutMs   int64  `json:"long_press_timeout_ms"`
}

func statusFor(b *controller.Button) buttonStatus {
	return buttonStatus{
		Name:                 b.Name,
		PinID:                b.PinID(),
		Pressed:              b.Pressed(),
		LongPressed:          b.LongPressed(),
		DoubleClickTimeoutMs: b.DoubleClickTimeout().Milliseconds(),
		LongPressTimeoutMs:   b.LongPressTimeout().Milliseconds(),
	}
}

func (s *Server) sendSuccess(w http.ResponseWriter, data any) {
	s.sendResponse(w, APIResponse{Status: "ok", Data: data}, http.StatusOK)
}

func (s *Server) sendError(w http.ResponseWriter, message string, code int) {
	s.sendResponse(w, APIResponse{Status: "error", Message: message}, code)
}

func (s *Server) sendResponse(w http.ResponseWriter, resp APIResponse, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

func (s *Server) listButtonsHandler(w http.ResponseWriter, r *http.Request) {
	buttons := s.ctrl.Buttons()
	out := make([]buttonStatus, len(buttons))
	for i, b := range buttons {
		out[i] = statusFor(b)
	}
	s.sendSuccess(w, out)
}

func (s *Server) buttonStatusHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	button, ok := s.ctrl.ButtonByName(name)
	if !ok {
		s.sendError(w, ErrButtonNotFound.Error(), http.StatusNotFound)
		return
	}

	s.sendSuccess(w, statusFor(button))
}

// edgeRequest is the body of POST /buttons/{name}/edge: the pin level
// to synthesize.
type edgeRequest struct {
	Level bool `json:"level"`
}

func (s *Server) buttonEdgeHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	button, ok := s.ctrl.ButtonByName(name)
	if !ok {
		s.sendError(w, ErrButtonNotFound.Error(), http.StatusNotFound)
		return
	}

	if s.injector == nil {
		s.sendError(w, ErrEdgeInjectionUnavailable.Error(), http.StatusConflict)
		return
	}

	var req edgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.injector.SetLevel(button.PinID(), req.Level, time.Now())
	s.sendSuccess(w, statusFor(button))
}

func (s *Server) listRoutesHandler(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, map[string]any{"routes": s.ListRoutes(), "generated_at": time.Now().Format(time.RFC3339)})
}
