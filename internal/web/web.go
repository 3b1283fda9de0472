package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"kioskcal/internal/config"
	"kioskcal/internal/layout"
	appLog "kioskcal/internal/log"
	"kioskcal/internal/model"
	"kioskcal/internal/report"
	"kioskcal/internal/slides"
)

// EventLoader is the part of report.Runner the server needs.
type EventLoader interface {
	Today() time.Time
	LoadEvents(ctx context.Context, from, to time.Time) ([]model.Event, error)
	Layout(events []model.Event, ym report.YearMonth) (layout.Result, error)
}

// Server serves the rendered slides, their manifest and read-only JSON
// views of the event data for the kiosk player.
type Server struct {
	cfg    *config.Config
	loader EventLoader
	router chi.Router

	// Expanded events per requested range, so the player polling the API
	// does not re-read the workbook and feeds on every request.
	eventsMu    sync.Mutex
	eventsCache map[string]eventsCache
}

type eventsCache struct {
	events    []model.Event
	updatedAt time.Time
}

const eventsCacheTTL = 30 * time.Second

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, loader EventLoader) *Server {
	s := &Server{
		cfg:         cfg,
		loader:      loader,
		router:      chi.NewRouter(),
		eventsCache: make(map[string]eventsCache),
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(s.router)
	}
	return s.router
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="KioskCal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// StartServer serves on cfg.Listen until ctx is cancelled, then shuts down
// gracefully.
func StartServer(ctx context.Context, cfg *config.Config, loader EventLoader) error {
	s := NewServer(cfg, loader)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/slides.json", s.handleManifest)
	r.Get("/slides/{name}", s.handleSlide)
	r.Route("/api", func(r chi.Router) {
		r.Get("/layout", s.handleLayout)
		r.Get("/events", s.handleEvents)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		appLog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"took", time.Since(start).Round(time.Microsecond),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleManifest serves slides.json. The player polls it, so it is never
// cached.
func (s *Server) handleManifest(w http.ResponseWriter, _ *http.Request) {
	m, err := slides.ReadManifest(s.cfg.OutputDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, "no manifest generated yet")
			return
		}
		appLog.Error("read manifest failed", err)
		writeError(w, http.StatusInternalServerError, "failed to read manifest")
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, m)
}

// handleSlide serves one PNG from the output directory.
func (s *Server) handleSlide(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || filepath.Base(name) != name || !strings.EqualFold(filepath.Ext(name), ".png") {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.cfg.OutputDir, name))
}

// layoutResponse is the JSON shape of /api/layout.
type layoutResponse struct {
	Year     int              `json:"year"`
	Month    int              `json:"month"`
	SlotRows int              `json:"slot_rows"`
	Weeks    [][7]int         `json:"weeks"`
	Today    *cellDTO         `json:"today,omitempty"`
	Placed   []placedDTO      `json:"placed"`
	Dropped  []droppedDTO     `json:"dropped"`
	Legend   []legendEntryDTO `json:"legend"`
}

type cellDTO struct {
	Week int `json:"week"`
	Col  int `json:"col"`
}

type placedDTO struct {
	Name     string `json:"name"`
	Owner    string `json:"owner"`
	Week     int    `json:"week"`
	StartCol int    `json:"start_col"`
	EndCol   int    `json:"end_col"`
	Slot     int    `json:"slot"`
	Text     string `json:"text"`
	Color    string `json:"color"`
}

type droppedDTO struct {
	Name     string `json:"name"`
	Week     int    `json:"week"`
	StartCol int    `json:"start_col"`
	EndCol   int    `json:"end_col"`
	Reason   string `json:"reason"`
}

type legendEntryDTO struct {
	Owner string `json:"owner"`
	Color string `json:"color"`
}

// handleLayout returns the month calendar placement.
//
// GET /api/layout?year=2025&month=7
//   - year:  defaults to the current year
//   - month: number or name, defaults to the current month
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	today := s.loader.Today()
	q := r.URL.Query()

	ym := report.YearMonth{Year: today.Year(), Month: today.Month()}
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		ym.Year = y
	}
	if v := q.Get("month"); v != "" {
		m, err := report.ParseMonth(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ym.Month = m
	}

	events, err := s.events(r.Context(), ym.First(), ym.Last())
	if err != nil {
		appLog.Error("api layout: load events failed", err)
		writeError(w, http.StatusBadGateway, "failed to load events")
		return
	}

	res, err := s.loader.Layout(events, ym)
	if err != nil {
		if errors.Is(err, layout.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		appLog.Error("api layout failed", err)
		writeError(w, http.StatusInternalServerError, "layout failed")
		return
	}

	writeJSON(w, http.StatusOK, toLayoutResponse(res, s.cfg.Colors))
}

func toLayoutResponse(res layout.Result, colors layout.ColorTable) layoutResponse {
	resp := layoutResponse{
		Year:     res.Grid.Year,
		Month:    int(res.Grid.Month),
		SlotRows: res.SlotRows,
		Weeks:    make([][7]int, 0, len(res.Grid.Weeks)),
		Placed:   make([]placedDTO, 0, len(res.Placed)),
		Dropped:  make([]droppedDTO, 0, len(res.Dropped)),
		Legend:   make([]legendEntryDTO, 0),
	}
	for _, wk := range res.Grid.Weeks {
		var row [7]int
		for i, c := range wk {
			row[i] = c.Day
		}
		resp.Weeks = append(resp.Weeks, row)
	}
	if week, col, ok := res.Grid.Today(); ok {
		resp.Today = &cellDTO{Week: week, Col: col}
	}

	seen := make(map[string]bool)
	for _, p := range res.Placed {
		resp.Placed = append(resp.Placed, placedDTO{
			Name:     p.Event.Name,
			Owner:    p.Event.Owner,
			Week:     p.WeekIndex,
			StartCol: p.StartCol,
			EndCol:   p.EndCol,
			Slot:     p.Slot,
			Text:     p.DisplayText,
			Color:    p.Color,
		})
		if o := p.Event.Owner; o != "" && !seen[o] {
			seen[o] = true
			resp.Legend = append(resp.Legend, legendEntryDTO{Owner: o, Color: colors.Lookup(o)})
		}
	}
	for _, d := range res.Dropped {
		resp.Dropped = append(resp.Dropped, droppedDTO{
			Name:     d.Span.Event.Name,
			Week:     d.Span.WeekIndex,
			StartCol: d.Span.StartCol,
			EndCol:   d.Span.EndCol,
			Reason:   d.Reason,
		})
	}
	return resp
}

// eventsResponse is the JSON response shape for /api/events.
type eventsResponse struct {
	Events     []eventDTO `json:"events"`
	RangeStart string     `json:"range_start"`
	RangeEnd   string     `json:"range_end"`
}

type eventDTO struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
	Owner string `json:"owner,omitempty"`
}

// handleEvents returns the events touching a window around today.
//
// GET /api/events?days=7&backfill=1
//   - days:     how many days ahead (default 7)
//   - backfill: how many past days to include (default 1)
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days := parseIntDefault(q.Get("days"), 7)
	if days <= 0 {
		days = 7
	}
	backfill := parseIntDefault(q.Get("backfill"), 1)
	if backfill < 0 {
		backfill = 0
	}

	today := s.loader.Today()
	from := today.AddDate(0, 0, -backfill)
	to := today.AddDate(0, 0, days)

	events, err := s.events(r.Context(), from, to)
	if err != nil {
		appLog.Error("api events: load failed", err)
		writeError(w, http.StatusBadGateway, "failed to load events")
		return
	}

	resp := eventsResponse{
		Events:     make([]eventDTO, 0, len(events)),
		RangeStart: from.Format(time.DateOnly),
		RangeEnd:   to.Format(time.DateOnly),
	}
	for _, e := range events {
		if e.End.Before(from) || e.Start.After(to) {
			continue
		}
		resp.Events = append(resp.Events, eventDTO{
			Name:  e.Name,
			Start: e.Start.Format(time.DateOnly),
			End:   e.End.Format(time.DateOnly),
			Owner: e.Owner,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// events loads events for [from, to] through a short-lived cache.
func (s *Server) events(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	key := from.Format(time.DateOnly) + "/" + to.Format(time.DateOnly)

	s.eventsMu.Lock()
	ec, ok := s.eventsCache[key]
	s.eventsMu.Unlock()
	if ok && time.Since(ec.updatedAt) < eventsCacheTTL {
		return ec.events, nil
	}

	events, err := s.loader.LoadEvents(ctx, from, to)
	if err != nil {
		return nil, err
	}

	s.eventsMu.Lock()
	for k, v := range s.eventsCache {
		if time.Since(v.updatedAt) >= eventsCacheTTL {
			delete(s.eventsCache, k)
		}
	}
	s.eventsCache[key] = eventsCache{events: events, updatedAt: time.Now()}
	s.eventsMu.Unlock()
	return events, nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
