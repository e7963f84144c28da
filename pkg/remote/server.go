package remote

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/borgmon/alarm-clock/pkg/models"
	"github.com/borgmon/alarm-clock/pkg/ringer"
	"github.com/borgmon/alarm-clock/pkg/store"
)

// Controller acts on the ringing episode. *ringer.Ringer implements it.
type Controller interface {
	Snooze(alarmID string) error
	Dismiss(alarmID string) error
	Ringing() (models.Alarm, bool)
}

// Server is the localhost control API
type Server struct {
	alarms *store.AlarmStore
	ctl    Controller
	broker *Broker
	router chi.Router
}

// NewServer creates the API over alarms. The /events stream carries what is
// published on broker, which is normally also attached to the ringer as a
// presenter. A nil broker gets a fresh one.
func NewServer(alarms *store.AlarmStore, ctl Controller, broker *Broker) *Server {
	if broker == nil {
		broker = NewBroker()
	}
	s := &Server{
		alarms: alarms,
		ctl:    ctl,
		broker: broker,
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/alarms", listAlarms(alarms))
	r.Post("/alarms", createAlarm(alarms))
	r.Patch("/alarms/{id}", updateAlarm(alarms))
	r.Delete("/alarms/{id}", deleteAlarm(alarms, ctl))
	r.Post("/alarms/{id}/snooze", snoozeAlarm(ctl))
	r.Post("/alarms/{id}/dismiss", dismissAlarm(ctl))
	r.Get("/ringing", getRinging(ctl))
	r.Get("/events", streamEvents(s.broker))

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[REMOTE] Listening on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Println("[REMOTE] Stopped")
	return nil
}

type createRequest struct {
	Time  string `json:"time"` // HH:MM
	Label string `json:"label"`
	Tone  string `json:"tone"`
}

type updateRequest struct {
	Enabled *bool `json:"enabled"`
}

func listAlarms(alarms *store.AlarmStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, alarms.List(), http.StatusOK)
	}
}

func createAlarm(alarms *store.AlarmStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, "invalid request body", http.StatusBadRequest)
			return
		}

		at, err := models.ParseClockTime(req.Time)
		if err != nil {
			respondErr(w, err)
			return
		}

		alarm, err := alarms.Add(at, req.Tone, req.Label)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, alarm, http.StatusCreated)
	}
}

func updateAlarm(alarms *store.AlarmStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req updateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Enabled == nil {
			respondError(w, "nothing to update", http.StatusBadRequest)
			return
		}

		alarm, err := alarms.SetEnabled(id, *req.Enabled)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, alarm, http.StatusOK)
	}
}

// deleteAlarm refuses the ringing alarm; it has to be answered first
func deleteAlarm(alarms *store.AlarmStore, ctl Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if ringing, ok := ctl.Ringing(); ok && ringing.ID == id {
			respondErr(w, models.Errorf(models.ErrConflict, "alarm %s is ringing, snooze or dismiss it first", id))
			return
		}
		if err := alarms.Remove(id); err != nil {
			respondErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func snoozeAlarm(ctl Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ctl.Snooze(chi.URLParam(r, "id")); err != nil {
			respondErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func dismissAlarm(ctl Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ctl.Dismiss(chi.URLParam(r, "id")); err != nil {
			respondErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func getRinging(ctl Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		alarm, ok := ctl.Ringing()
		if !ok {
			respondError(w, "no alarm is ringing", http.StatusNotFound)
			return
		}
		respondJSON(w, alarm, http.StatusOK)
	}
}

// statusFor maps application and ringer errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, ringer.ErrNotRinging):
		return http.StatusConflict
	case errors.Is(err, ringer.ErrNotRunning):
		return http.StatusServiceUnavailable
	}

	switch models.ErrorCode(err) {
	case models.ErrInvalid:
		return http.StatusBadRequest
	case models.ErrNotFound:
		return http.StatusNotFound
	case models.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := models.ErrorDescription(err)
	if status == http.StatusConflict || status == http.StatusServiceUnavailable {
		message = err.Error()
	}
	respondError(w, message, status)
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[REMOTE] failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
