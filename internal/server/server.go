// Package server is the local review UI: recent articles with their relevance
// verdicts, one-click include/exclude corrections, keyword management, and
// rendered run reports. It binds to loopback only; this is an operator tool,
// not a public site.
package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"

	"jobradar/internal/database"
	"jobradar/internal/feedback"
	"jobradar/internal/keywords"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

const articlePageSize = 100

// Server is the HTTP server for the review UI.
type Server struct {
	db    *database.DB
	store *feedback.Store
	pages map[string]*template.Template
	mux   *http.ServeMux
}

// New creates a new Server.
func New(db *database.DB) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the clone.
	// This gives each page its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"index.html", "article.html", "keywords.html", "reports.html", "report.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{db: db, store: feedback.NewStore(db), pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Routes
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/article/", s.handleArticle)
	s.mux.HandleFunc("/feedback/", s.handleFeedback)
	s.mux.HandleFunc("/keywords", s.handleKeywords)
	s.mux.HandleFunc("/keywords/add", s.handleKeywordAdd)
	s.mux.HandleFunc("/keywords/remove", s.handleKeywordRemove)
	s.mux.HandleFunc("/keywords/clear", s.handleKeywordClear)
	s.mux.HandleFunc("/reports", s.handleReports)
	s.mux.HandleFunc("/reports/", s.handleReport)
}

// articleView pairs a stored article with its current feedback verdict.
type articleView struct {
	database.Article
	Included bool
	Excluded bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	articles, err := s.db.GetRecentArticles(articlePageSize)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	fb := s.store.Load()
	views := make([]articleView, len(articles))
	for i, a := range articles {
		views[i] = articleView{
			Article:  a,
			Included: fb.IsIncluded(a.URL),
			Excluded: fb.IsExcluded(a.URL),
		}
	}

	stats, _ := s.db.GetStats()

	s.render(w, "index.html", map[string]any{
		"Articles": views,
		"Stats":    stats,
	})
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/article/"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	article, err := s.db.GetArticleByID(id)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if article == nil {
		http.NotFound(w, r)
		return
	}

	fb := s.store.Load()
	s.render(w, "article.html", map[string]any{
		"Article":  article,
		"Included": fb.IsIncluded(article.URL),
		"Excluded": fb.IsExcluded(article.URL),
	})
}

// handleFeedback records a verdict correction: POST /feedback/{id}/{action}
// where action is include, exclude, or clear.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/feedback/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	article, err := s.db.GetArticleByID(id)
	if err != nil || article == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	switch parts[1] {
	case "include":
		err = s.store.Include(article.URL)
	case "exclude":
		err = s.store.Exclude(article.URL)
	case "clear":
		err = s.store.ClearURL(article.URL)
	}
	if err != nil {
		log.Printf("Error recording feedback for %s: %v", article.URL, err)
	}

	redirect := r.FormValue("redirect")
	if redirect == "" {
		redirect = "/"
	}
	http.Redirect(w, r, redirect, http.StatusFound)
}

func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	fb := s.store.Load()
	scorer := keywords.NewScorer(fb.AddedKeywords, fb.RemovedKeywords)

	s.render(w, "keywords.html", map[string]any{
		"Effective": scorer.EffectiveKeywords(),
		"Added":     fb.AddedKeywords,
		"Removed":   fb.RemovedKeywords,
	})
}

func (s *Server) handleKeywordAdd(w http.ResponseWriter, r *http.Request) {
	s.keywordAction(w, r, s.store.AddKeyword)
}

func (s *Server) handleKeywordRemove(w http.ResponseWriter, r *http.Request) {
	s.keywordAction(w, r, s.store.RemoveKeyword)
}

func (s *Server) handleKeywordClear(w http.ResponseWriter, r *http.Request) {
	s.keywordAction(w, r, s.store.ClearKeyword)
}

func (s *Server) keywordAction(w http.ResponseWriter, r *http.Request, action func(string) error) {
	if r.Method == http.MethodPost {
		if keyword := strings.TrimSpace(r.FormValue("keyword")); keyword != "" {
			if err := action(keyword); err != nil {
				log.Printf("Error updating keyword %q: %v", keyword, err)
			}
		}
	}
	http.Redirect(w, r, "/keywords", http.StatusFound)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.db.GetAllRunReports()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	s.render(w, "reports.html", map[string]any{
		"Reports": reports,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/reports/"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/reports", http.StatusFound)
		return
	}

	rep, err := s.db.GetRunReport(id)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if rep == nil {
		http.NotFound(w, r)
		return
	}

	s.render(w, "report.html", map[string]any{
		"Report": rep,
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port, loopback only.
func Serve(db *database.DB, port int) error {
	srv, err := New(db)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
