package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pysugar/drivelink/internal/auth/session"
	"github.com/pysugar/drivelink/internal/service"
	drivev3 "google.golang.org/api/drive/v3"
)

var emptyFiles = []*drivev3.File{}

// SignOutHandler ends the web session and disables bot access for the owner.
func SignOutHandler(svc *service.Service, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.SignOut(r.Context(), sessionUser(r)); err != nil {
			writeError(w, r, err)
			return
		}
		sessions.Clear(w)
		writeOK(w, nil)
	}
}

// DriveIndexHandler pages through the signed-in owner's local index.
func DriveIndexHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, err := svc.IndexedFiles(r.Context(), sessionUser(r), q.Get("page"), q.Get("pageSize"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, map[string]interface{}{
			"files":    page.Files,
			"page":     page.Page,
			"pageSize": page.PageSize,
			"total":    page.Total,
		})
	}
}

// MoviesHandler lists the signed-in owner's Movies folder.
func MoviesHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, err := svc.Movies(r.Context(), sessionUser(r), q.Get("pageSize"), q.Get("pageToken"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, map[string]interface{}{
			"files":         page.Files,
			"nextPageToken": nullable(page.NextPageToken),
			"folderId":      nullable(page.FolderID),
		})
	}
}

// MovieHandler returns one file with its playback target.
func MovieHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		movie, err := svc.Movie(r.Context(), sessionUser(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, map[string]interface{}{"file": movie})
	}
}
