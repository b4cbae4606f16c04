// Package site serves the league web application: the home page, event
// calendar and results, standings tables and the static content pages.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"regexp"
	"strconv"

	"github.com/klauspost/compress/gzhttp"

	"github.com/eastkentcx/ekcx/internal/adapters/http/api"
	"github.com/eastkentcx/ekcx/internal/domain/model"
	"github.com/eastkentcx/ekcx/internal/domain/types"
	"github.com/eastkentcx/ekcx/internal/generator"
	"github.com/eastkentcx/ekcx/pkg/logger"
)

// Calendar is the read side of the event calendar.
type Calendar interface {
	Get(year, round int) (model.Event, error)
	Years() []int
	Rounds(year int) []model.Event
}

// Sections loads the stored result sections of a round.
type Sections interface {
	Load(ctx context.Context, year, round int) ([]model.Section, error)
}

// StatsProvider reports the most recent standings generation.
type StatsProvider = api.StatsProvider

// Config locates published content.
type Config struct {
	// StandingsDir holds <year>/<category>.html fragments.
	StandingsDir string
	// Season is linked from the navigation and the home page.
	Season int
}

var pageNames = []string{
	"home", "events", "event_detail", "standings", "page",
	"media", "forum", "privacy", "betteshangerparkchallenges",
}

var categoryPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// Site renders the league pages.
type Site struct {
	cfg      Config
	calendar Calendar
	sections Sections
	stats    StatsProvider
	logger   logger.Logger

	pages map[string]*template.Template
	rules template.HTML
	faq   template.HTML
}

// New parses the embedded templates and content.
func New(cfg Config, cal Calendar, sections Sections, opts ...Option) (*Site, error) {
	s := &Site{
		cfg:      cfg,
		calendar: cal,
		sections: sections,
		logger:   logger.Get().Named("site"),
		pages:    make(map[string]*template.Template, len(pageNames)),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, name := range pageNames {
		t, err := template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrTemplate, name, err)
		}
		s.pages[name] = t
	}

	var err error
	if s.rules, err = renderMarkdown("rules.md"); err != nil {
		return nil, err
	}
	if s.faq, err = renderMarkdown("faq.md"); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler returns the complete application handler: pages, static assets
// and the operational endpoints, behind proxy-header trust and gzip.
func (s *Site) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	s.Register(ctx, mux)
	api.NewServer("site", s.stats).Register(ctx, mux)
	return ProxyHeaders(gzhttp.GzipHandler(mux))
}

// Register attaches the page routes to mux.
func (s *Site) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /{$}", api.MetricsMiddleware(s.handleHome, "home"))
	mux.Handle("GET /events", http.RedirectHandler("/events/", http.StatusMovedPermanently))
	mux.HandleFunc("GET /events/{$}", api.MetricsMiddleware(s.handleEvents, "events"))
	mux.HandleFunc("GET /events/{year}/{round}", api.MetricsMiddleware(s.handleEventDetail, "event_detail"))
	mux.HandleFunc("GET /standings/{year}/{category}", api.MetricsMiddleware(s.handleStandings, "standings"))
	mux.HandleFunc("GET /rules", api.MetricsMiddleware(s.markdownPage("Rules", "standings", s.rules), "rules"))
	mux.HandleFunc("GET /faq", api.MetricsMiddleware(s.markdownPage("FAQ", "standings", s.faq), "faq"))

	for _, p := range []struct{ path, name, title, selected string }{
		{"/media/", "media", "Media", "media"},
		{"/forum/", "forum", "Forum", "forum"},
		{"/privacy/", "privacy", "Privacy", "home"},
		{"/betteshangerparkchallenges/", "betteshangerparkchallenges", "Betteshanger Park Challenges", "cycling"},
	} {
		mux.HandleFunc("GET "+p.path+"{$}", api.MetricsMiddleware(s.staticPage(p.name, p.title, p.selected), p.name))
	}

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(FS())))
	mux.HandleFunc("GET /static/images/ekcx.jpg", s.handleFavicon)
	mux.HandleFunc("GET /favicon.ico", s.handleFavicon)
}

type categoryLink struct {
	Key   string
	Title string
}

type yearEvents struct {
	Year   int
	Events []model.Event
}

type sectionView struct {
	Title string
	HTML  template.HTML
}

// view carries every field a page template may use.
type view struct {
	Title      string
	Selected   string
	Static     string
	Season     int
	Categories []categoryLink

	Next  *model.Event
	Error string
	Years []yearEvents

	Event    model.Event
	Sections []sectionView

	Year          int
	Category      string
	CategoryTitle string
	Fragment      template.HTML

	Body template.HTML
}

func (s *Site) newView(r *http.Request, title, selected string) view {
	static := "/static"
	if r.Host != "" {
		static = Scheme(r) + "://" + r.Host + "/static"
	}
	return view{
		Title:      title,
		Selected:   selected,
		Static:     static,
		Season:     s.cfg.Season,
		Categories: categoryLinks(),
	}
}

func categoryLinks() []categoryLink {
	links := make([]categoryLink, 0, len(types.Categories)+1)
	for _, c := range types.Categories {
		links = append(links, categoryLink{Key: c, Title: types.Title(c)})
	}
	return append(links, categoryLink{Key: types.Teams, Title: "Teams"})
}

func (s *Site) render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	var buf bytes.Buffer
	if err := s.pages[page].ExecuteTemplate(&buf, "layout", v); err != nil {
		s.logger.Error(r.Context(), "render failed", logger.String("page", page), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Site) handleHome(w http.ResponseWriter, r *http.Request) {
	v := s.newView(r, "", "home")
	for _, ev := range s.calendar.Rounds(s.cfg.Season) {
		if !ev.Completed() {
			v.Next = &ev
			break
		}
	}
	s.render(w, r, http.StatusOK, "home", v)
}

func (s *Site) eventsView(r *http.Request) view {
	v := s.newView(r, "Events", "events")
	for _, y := range s.calendar.Years() {
		v.Years = append(v.Years, yearEvents{Year: y, Events: s.calendar.Rounds(y)})
	}
	return v
}

func (s *Site) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "events", s.eventsView(r))
}

func (s *Site) handleEventDetail(w http.ResponseWriter, r *http.Request) {
	year, errYear := strconv.Atoi(r.PathValue("year"))
	round, errRound := strconv.Atoi(r.PathValue("round"))
	if errYear != nil || errRound != nil {
		http.NotFound(w, r)
		return
	}

	ev, err := s.calendar.Get(year, round)
	if err != nil {
		v := s.eventsView(r)
		v.Error = "Event not found"
		s.render(w, r, http.StatusNotFound, "events", v)
		return
	}

	v := s.newView(r, ev.Name, "events")
	v.Event = ev
	sections, err := s.sections.Load(r.Context(), year, round)
	if err != nil {
		s.logger.Warn(r.Context(), "failed to load result sections",
			logger.Int("year", year), logger.Int("round", round), logger.Error(err))
	}
	for _, sec := range sections {
		// Sections are rendered by the generator from escaped cell text.
		v.Sections = append(v.Sections, sectionView{Title: sec.Title, HTML: template.HTML(sec.HTML)}) //nolint:gosec // generated markup
	}
	s.render(w, r, http.StatusOK, "event_detail", v)
}

func (s *Site) handleStandings(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.PathValue("year"))
	category := r.PathValue("category")
	if err != nil || !categoryPattern.MatchString(category) {
		http.NotFound(w, r)
		return
	}

	title := types.Title(category)
	if category == types.Teams {
		title = "Teams"
	}
	v := s.newView(r, fmt.Sprintf("%s standings %d", title, year), "standings")
	v.Year = year
	v.Category = category
	v.CategoryTitle = title

	fragment, err := os.ReadFile(generator.StandingsPath(s.cfg.StandingsDir, year, category))
	switch {
	case err == nil:
		v.Fragment = template.HTML(fragment) //nolint:gosec // generated by the standings job
	case errors.Is(err, os.ErrNotExist):
	default:
		s.logger.Warn(r.Context(), "failed to read standings", logger.Int("year", year),
			logger.String("category", category), logger.Error(err))
	}
	s.render(w, r, http.StatusOK, "standings", v)
}

func (s *Site) markdownPage(title, selected string, body template.HTML) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := s.newView(r, title, selected)
		v.Body = body
		s.render(w, r, http.StatusOK, "page", v)
	}
}

func (s *Site) staticPage(name, title, selected string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, name, s.newView(r, title, selected))
	}
}

func (s *Site) handleFavicon(w http.ResponseWriter, r *http.Request) {
	data, err := staticFS.ReadFile(faviconPath)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/x-icon")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}
