package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	pkgerrors "github.com/depmatrix/depmatrix/pkg/errors"
	"github.com/depmatrix/depmatrix/pkg/layout"
	"github.com/depmatrix/depmatrix/pkg/matrix"
	"github.com/depmatrix/depmatrix/pkg/observability"
	"github.com/depmatrix/depmatrix/pkg/path"
	"github.com/depmatrix/depmatrix/pkg/session"
	"github.com/depmatrix/depmatrix/pkg/view"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string // listen address
	noCache bool   // bypass the matrix cache
}

// serveCommand creates the serve command exposing sessions and matrix
// resolution over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve <graph.json>",
		Short: "Serve matrix resolution over HTTP",
		Long: `Serve a graph's matrix resolution as a JSON API.

Sessions persist action paths; every append re-resolves the path and
returns the updated matrix state.

Example:
  depmatrix serve deps.json --addr :8080`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (defaults to configuration)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the matrix cache")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, graphPath string, opts serveOpts) error {
	model, err := c.newModel(cmd, graphPath, opts.noCache)
	if err != nil {
		return err
	}
	sessions, err := c.newSessionStore(cmd)
	if err != nil {
		return err
	}
	defer sessions.Close()

	addr := opts.addr
	if addr == "" {
		addr = c.Config.Server.Addr
	}

	s := &server{
		model:    model,
		sessions: sessions,
		viewport: c.Config.Viewport,
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx := cmd.Context()
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	c.Logger.Info("serving", "addr", addr, "graph", c.shortHash(model.GraphHash()))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// =============================================================================
// Server
// =============================================================================

// server handles the HTTP API. Resolution mutates the model's
// optimized graph, so all resolving handlers serialize on mu.
type server struct {
	model    *view.Model
	sessions session.Store
	viewport ViewportConfig

	mu sync.Mutex
}

func (s *server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(hooksMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.handleListSessions)
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/actions", s.handleAppendAction)
			r.Post("/undo", s.handleUndo)
			r.Get("/matrix", s.handleMatrix)
			r.Post("/hit", s.handleHit)
		})
	})
	return r
}

// hooksMiddleware emits request and response observability hooks.
func hooksMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

// =============================================================================
// Handlers
// =============================================================================

// stateResponse is the JSON shape returned by resolving endpoints.
type stateResponse struct {
	SessionID string             `json:"session_id,omitempty"`
	Nodes     []string           `json:"nodes"`
	Cells     [][]int            `json:"cells"`
	Anchor    string             `json:"anchor,omitempty"`
	Direction string             `json:"direction,omitempty"`
	Expanded  []string           `json:"expanded,omitempty"`
	Geometry  layout.Geometry    `json:"geometry"`
	Regions   []view.RegionEntry `json:"regions"`
	Actions   []path.Action      `json:"actions"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "graph": s.model.GraphHash()})
}

func (s *server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessions.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	sess := session.New(req.Name, s.model.GraphHash())
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleAppendAction(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	var a path.Action
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode action: %w", err))
		return
	}
	if err := pkgerrors.ValidateNodeID(a.Node); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess.Append(a)
	resp, err := s.resolve(r, sess)
	if err != nil {
		writeError(w, resolveStatus(err), err)
		return
	}
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleUndo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	if len(sess.Actions) == 0 {
		writeError(w, http.StatusConflict, errors.New("nothing to undo"))
		return
	}

	sess.Truncate(len(sess.Actions) - 1)
	resp, err := s.resolve(r, sess)
	if err != nil {
		writeError(w, resolveStatus(err), err)
		return
	}
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleMatrix(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	resp, err := s.resolve(r, sess)
	if err != nil {
		writeError(w, resolveStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleHit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	var req struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	// The hit test must read the regions this resolve installed, so
	// both happen under the lock.
	s.mu.Lock()
	if _, err := s.resolveLocked(r, sess); err != nil {
		s.mu.Unlock()
		writeError(w, resolveStatus(err), err)
		return
	}
	entry, hit := s.model.ResolvePoint(req.X, req.Y)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"hit": hit, "region": entry})
}

// =============================================================================
// Helpers
// =============================================================================

// resolve replays the session's path into a fresh state and registers
// the default interactive regions.
func (s *server) resolve(r *http.Request, sess *session.Session) (stateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveLocked(r, sess)
}

// resolveLocked is resolve for callers that already hold s.mu.
func (s *server) resolveLocked(r *http.Request, sess *session.Session) (stateResponse, error) {
	w, h := s.width(r), s.height(r)
	if err := pkgerrors.ValidateViewport(w, h); err != nil {
		return stateResponse{}, err
	}

	state, err := s.model.Update(r.Context(), sess.Actions, w, h)
	if err != nil {
		return stateResponse{}, err
	}
	regions := view.DefaultRegions(state)
	s.model.SetRegions(regions)

	expanded := make([]string, 0, len(state.Config.Expanded))
	for id := range state.Config.Expanded {
		expanded = append(expanded, id)
	}
	slices.Sort(expanded)

	resp := stateResponse{
		SessionID: sess.ID,
		Nodes:     state.Matrix.Nodes,
		Cells:     state.Matrix.Cells,
		Expanded:  expanded,
		Geometry:  state.Geometry,
		Regions:   regions,
		Actions:   sess.Actions,
	}
	if state.Config.Focused() {
		resp.Anchor = state.Config.Anchor
		resp.Direction = state.Config.Kind.String()
	}
	return resp, nil
}

func (s *server) loadSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	if err := sess.CheckGraph(s.model.GraphHash()); err != nil {
		writeError(w, http.StatusConflict, err)
		return nil, false
	}
	return sess, true
}

func (s *server) width(r *http.Request) float64 {
	if v, err := strconv.ParseFloat(r.URL.Query().Get("width"), 64); err == nil && v > 0 {
		return v
	}
	return s.viewport.Width
}

func (s *server) height(r *http.Request) float64 {
	if v, err := strconv.ParseFloat(r.URL.Query().Get("height"), 64); err == nil && v > 0 {
		return v
	}
	return s.viewport.Height
}

func resolveStatus(err error) int {
	if errors.Is(err, matrix.ErrSyntheticFocus) || errors.Is(err, matrix.ErrInvalidConfiguration) {
		return http.StatusUnprocessableEntity
	}
	if pkgerrors.Is(err, pkgerrors.ErrCodeInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	body := map[string]string{"error": pkgerrors.UserMessage(err)}
	if code := pkgerrors.GetCode(err); code != "" {
		body["code"] = string(code)
	}
	writeJSON(w, status, body)
}
