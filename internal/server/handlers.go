package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/godepscan/pkg/buildinfo"
	"github.com/matzehuels/godepscan/pkg/deps"
	"github.com/matzehuels/godepscan/pkg/deps/golang"
	"github.com/matzehuels/godepscan/pkg/errors"
	"github.com/matzehuels/godepscan/pkg/pipeline"
)

// ResolveRequest is the body of POST /v1/resolve.
type ResolveRequest struct {
	Root                string `json:"root"`
	Manager             string `json:"manager,omitempty"`
	FlushTrailingStanza *bool  `json:"flush_trailing_stanza,omitempty"`
	Refresh             bool   `json:"refresh,omitempty"`
}

// ResolveResponse is returned by /v1/resolve and /v1/parse.
type ResolveResponse struct {
	Dependencies []deps.Dependency `json:"dependencies"`
	Manager      string            `json:"manager,omitempty"`
	Path         string            `json:"path,omitempty"`
	CacheHit     bool              `json:"cache_hit"`
	Error        string            `json:"error,omitempty"`
	Code         errors.Code       `json:"code,omitempty"`
}

// ErrorResponse is returned for rejected requests.
type ErrorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

// ManagerInfo describes one supported manager.
type ManagerInfo struct {
	Name        string `json:"name"`
	Manifest    string `json:"manifest"`
	Pattern     string `json:"pattern"`
	Remediation string `json:"remediation"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": info.Version,
		"commit":  info.Commit,
	})
}

func (s *Server) handleManagers(w http.ResponseWriter, r *http.Request) {
	out := make([]ManagerInfo, 0, len(golang.Managers()))
	for _, m := range golang.Managers() {
		out = append(out, ManagerInfo{
			Name:        m.String(),
			Manifest:    m.Manifest(),
			Pattern:     m.Pattern(),
			Remediation: m.Remediation(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	if err := errors.ValidateRoot(req.Root, true); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !rootAllowed(req.Root, s.cfg.AllowedRoots) {
		writeError(w, http.StatusForbidden, errors.New(errors.ErrCodeInvalidPath, "root %s is outside the allowed roots", req.Root))
		return
	}

	logger := s.requestLogger(r)
	opts := pipeline.Options{
		Root:                req.Root,
		Manager:             req.Manager,
		FlushTrailingStanza: s.cfg.FlushTrailingStanza,
		Refresh:             req.Refresh,
		CacheTTL:            s.cfg.CacheTTL,
		Logger:              logger,
	}
	if opts.Manager == "" {
		opts.Manager = s.cfg.DefaultManager
	}
	if req.FlushTrailingStanza != nil {
		opts.FlushTrailingStanza = *req.FlushTrailingStanza
	}

	res, err := s.runner.Resolve(r.Context(), opts)
	if err != nil {
		msg := errors.UserMessage(err)
		logger.Warn(msg)
		writeJSON(w, http.StatusOK, ResolveResponse{
			Dependencies: []deps.Dependency{},
			Manager:      opts.Manager,
			Error:        msg,
			Code:         errors.GetCode(err),
		})
		return
	}
	writeJSON(w, http.StatusOK, responseFor(res))
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "manager")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, pipeline.MaxManifestSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				errors.New(errors.ErrCodeInvalidInput, "manifest exceeds %d bytes", pipeline.MaxManifestSize))
			return
		}
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidInput, err, "can't read request body"))
		return
	}

	opts := pipeline.Options{
		Content:             body,
		FlushTrailingStanza: s.cfg.FlushTrailingStanza,
		CacheTTL:            s.cfg.CacheTTL,
		Logger:              s.requestLogger(r),
	}
	if _, err := golang.ParseManager(target); err == nil {
		opts.Manager = target
	} else {
		opts.Filename = target
	}
	if v := r.URL.Query().Get("flush_trailing_stanza"); v != "" {
		opts.FlushTrailingStanza = v == "true" || v == "1"
	}

	res, err := s.runner.Parse(r.Context(), opts)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, responseFor(res))
}

func responseFor(res *pipeline.Result) ResolveResponse {
	records := res.Dependencies
	if records == nil {
		records = []deps.Dependency{}
	}
	return ResolveResponse{
		Dependencies: records,
		Manager:      res.Manager,
		Path:         res.Path,
		CacheHit:     res.CacheHit,
	}
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidManager, errors.ErrCodeInvalidPath, errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeManifestNotFound:
		return http.StatusNotFound
	case errors.ErrCodeMalformedDocument, errors.ErrCodeMalformedLine:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{
		Error: errors.UserMessage(err),
		Code:  errors.GetCode(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
