package httpctrl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Agrid-Dev/twozone/internal/ports"
	"github.com/Agrid-Dev/twozone/internal/report"
	"github.com/Agrid-Dev/twozone/internal/study"
	"github.com/Agrid-Dev/twozone/internal/thermal"
)

type Server struct {
	svc      ports.StudyService
	srv      *http.Server
	deviceID string
}

// New returns a runnable server.
func New(svc ports.StudyService, addr string, deviceID string) *Server {
	mux := http.NewServeMux()
	s := &Server{svc: svc, deviceID: deviceID}

	// Read
	mux.HandleFunc("GET /v1", s.handleGet)
	mux.HandleFunc("GET /v1/params", s.handleGetParams)
	mux.HandleFunc("GET /v1/runs/{case}", s.handleGetRun)
	mux.HandleFunc("GET /v1/runs/{case}/csv", s.handleGetRunCSV)
	mux.HandleFunc("GET /v1/plot.png", s.handleGetPlot)

	// Write: one endpoint per option
	mux.HandleFunc("POST /v1/noise", s.handlePostNoise)
	mux.HandleFunc("POST /v1/seed", s.handlePostSeed)
	mux.HandleFunc("POST /v1/rerun", s.handlePostRerun)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// ---- Handlers ----

func (s *Server) handleGet(w http.ResponseWriter, _ *http.Request) {
	s.respondReport(w)
}

func (s *Server) handleGetParams(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, report.NewParamsDTO(s.svc.Params()))
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.NewRunDTO(run))
}

func (s *Server) handleGetRunCSV(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+run.Case.String()+`.csv"`)
	w.WriteHeader(http.StatusOK)
	_ = report.WriteCSV(w, run)
}

func (s *Server) handleGetPlot(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := report.WritePlot(&buf, s.svc.Report()); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handlePostNoise(w http.ResponseWriter, r *http.Request) {
	// body: {"value": true}
	postValue(s, w, r, func(v bool) error {
		return s.svc.SetNoise(r.Context(), v)
	})
}

func (s *Server) handlePostSeed(w http.ResponseWriter, r *http.Request) {
	// body: {"value": 42}
	postValue(s, w, r, func(v uint64) error {
		return s.svc.SetSeed(r.Context(), v)
	})
}

func (s *Server) handlePostRerun(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Rerun(r.Context()); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondReport(w)
}

// ---- generic helpers ----
func (s *Server) respondReport(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, report.NewReportDTO(s.deviceID, s.svc.Report()))
}

func (s *Server) lookupRun(w http.ResponseWriter, r *http.Request) (*thermal.Run, bool) {
	c, err := thermal.ParseCase(r.PathValue("case"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	run, err := s.svc.Report().Run(c)
	if err != nil {
		writeErr(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return run, true
}

func postValue[T any](s *Server, w http.ResponseWriter, r *http.Request, apply func(T) error) {
	dec := json.NewDecoder(r.Body)
	var req struct {
		Value *T `json:"value"`
	}
	if err := dec.Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Value == nil {
		writeErr(w, http.StatusBadRequest, "missing field 'value'")
		return
	}

	if err := apply(*req.Value); err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}

	s.respondReport(w)
}

// statusFor maps configuration problems to 400 and anything else, such as a
// diverging recompute, to 500.
func statusFor(err error) int {
	var cfgErr *thermal.ConfigError
	switch {
	case errors.As(err, &cfgErr),
		errors.Is(err, study.ErrNoCases),
		errors.Is(err, study.ErrDuplicateCase),
		errors.Is(err, thermal.ErrInvalidCase):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
