package handlers

import (
	"net/http"

	"github.com/pysugar/drivelink/internal/service"
)

// LinkHandler binds a Telegram id to the signed-in owner.
func LinkHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TgID flexString `json:"tgId"`
		}
		if err := readJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}

		result, err := svc.Link(r.Context(), sessionUser(r), string(body.TgID))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, map[string]interface{}{
			"matched":       result.Matched,
			"modified":      result.Modified,
			"alreadyLinked": result.AlreadyLinked,
		})
	}
}

// VerifyHandler reports whether a Telegram id may use the bot.
func VerifyHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		verified, err := svc.Verify(r.Context(), r.URL.Query().Get("tg_id"))
		if err != nil {
			status, message := classify(err)
			writeJSON(w, status, map[string]interface{}{"ok": false, "verified": false, "error": message})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"verified": verified})
	}
}

// CacheHandler lists indexed files, optionally filtered by q.
func CacheHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		files, err := svc.CachedFiles(r.Context(), q.Get("tg_id"), q.Get("q"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, map[string]interface{}{"files": files})
	}
}

// FilesHandler lists the owner's Drive directly.
func FilesHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, err := svc.RemoteFiles(r.Context(), q.Get("tg_id"), service.RemoteQuery{
			Query:     q.Get("q"),
			PageToken: q.Get("pageToken"),
			Limit:     q.Get("limit"),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		files := page.Files
		if files == nil {
			files = emptyFiles
		}
		writeOK(w, map[string]interface{}{
			"files":         files,
			"nextPageToken": nullable(page.NextPageToken),
		})
	}
}

// SyncHandler refreshes the local index. ?force=true ignores the sync interval.
func SyncHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Sync(r.Context(), r.URL.Query().Get("tg_id"), queryBool(r, "force"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if result.Skipped {
			writeOK(w, map[string]interface{}{"skipped": true, "lastSync": result.LastSync})
			return
		}
		writeOK(w, map[string]interface{}{"total": result.Total})
	}
}

// StatsHandler returns per-category counts. ?force=true bypasses the cache.
func StatsHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Stats(r.Context(), r.URL.Query().Get("tg_id"), queryBool(r, "force"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, map[string]interface{}{
			"counts":    result.Counts,
			"updatedAt": result.UpdatedAt,
			"cached":    result.Cached,
		})
	}
}

// ListMembersHandler returns every member of an owner, removed ones included.
func ListMembersHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		members, err := svc.ListMembers(r.Context(), r.URL.Query().Get("owner_tg_id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, map[string]interface{}{"members": members})
	}
}

// ManageMemberHandler adds or removes a member.
func ManageMemberHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Action     string     `json:"action"`
			OwnerTgID  flexString `json:"owner_tg_id"`
			MemberTgID flexString `json:"member_tg_id"`
		}
		if err := readJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}

		if err := svc.ManageMember(r.Context(), body.Action, string(body.OwnerTgID), string(body.MemberTgID)); err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, map[string]interface{}{"action": body.Action})
	}
}

// BotLogoutHandler disables bot access for an owner and their members.
func BotLogoutHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			OwnerTgID flexString `json:"owner_tg_id"`
		}
		if err := readJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}

		if err := svc.BotLogout(r.Context(), string(body.OwnerTgID)); err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, nil)
	}
}
