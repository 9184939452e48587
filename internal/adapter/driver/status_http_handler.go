package driver

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/alorle/stream-bridge/internal/application"
)

//go:embed templates/status.html
var templateFS embed.FS

var statusTemplate = template.Must(template.ParseFS(templateFS, "templates/status.html"))

// StatusHTTPHandler renders the status page.
type StatusHTTPHandler struct {
	service *application.StatusService
}

// NewStatusHTTPHandler creates a new HTTP handler for the status page.
func NewStatusHTTPHandler(service *application.StatusService) *StatusHTTPHandler {
	return &StatusHTTPHandler{service: service}
}

// statusView is what the status template renders.
type statusView struct {
	Status       string
	Age          string
	Categories   int
	Streams      int
	PlaybackURLs int
	Credential   string
	LastRefresh  string
	Refreshing   bool
}

// ServeHTTP handles GET /
func (h *StatusHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var buf bytes.Buffer
	if err := statusTemplate.Execute(&buf, newStatusView(h.service.Status(r.Context()))); err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func newStatusView(st application.Status) statusView {
	view := statusView{
		Status:       "OK",
		Age:          "No data cached",
		Categories:   st.Categories,
		Streams:      st.Streams,
		PlaybackURLs: st.PlaybackURLs,
		Credential:   "Yes",
		LastRefresh:  "never",
		Refreshing:   st.Refreshing,
	}

	if !st.HasSnapshot {
		view.Status = "Error: Main stream list data not cached"
	} else if !st.FetchedAt.IsZero() {
		view.Age = fmt.Sprintf("%d seconds ago", int64(st.Age/time.Second))
	}

	if !st.CredentialConfigured {
		view.Credential = "No - CRITICAL: Set PPV_AUTH_TOKEN environment variable!"
	}

	if a := st.LastAttempt; !a.FinishedAt.IsZero() {
		at := a.FinishedAt.UTC().Format(time.RFC3339)
		if a.Err != nil {
			view.LastRefresh = fmt.Sprintf("failed at %s: %v", at, a.Err)
		} else {
			view.LastRefresh = "succeeded at " + at
		}
	}

	return view
}
