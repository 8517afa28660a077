package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/pysugar/drivelink/internal/db/models"
	"github.com/pysugar/drivelink/internal/drive"
	drivev3 "google.golang.org/api/drive/v3"
)

// CachedFiles returns the owner's indexed files, optionally narrowed to those
// whose name tokens start with every token of query.
func (s *Service) CachedFiles(ctx context.Context, tgID, query string) ([]models.DriveFile, error) {
	cred, err := s.authorize(ctx, tgID)
	if err != nil {
		return nil, err
	}
	files, err := s.store.ListDriveFiles(ctx, cred.UserID)
	if err != nil {
		return nil, fmt.Errorf("list cached files for %s: %w", cred.UserID, err)
	}
	if query == "" {
		return files, nil
	}

	matched := make([]models.DriveFile, 0, len(files))
	for _, f := range files {
		if drive.MatchesQuery(f.Tokens, query) {
			matched = append(matched, f)
		}
	}
	return matched, nil
}

// RemoteQuery is a pass-through Drive listing request from the bot.
type RemoteQuery struct {
	Query     string
	PageToken string
	Limit     string
}

// RemoteFiles lists the owner's Drive directly, newest first.
func (s *Service) RemoteFiles(ctx context.Context, tgID string, q RemoteQuery) (*drive.Page, error) {
	cred, err := s.authorize(ctx, tgID)
	if err != nil {
		return nil, err
	}
	token, err := s.accessToken(ctx, cred)
	if err != nil {
		return nil, err
	}

	query := q.Query
	if query == "" {
		query = drive.DefaultRemoteQuery
	}
	return s.drive.List(ctx, token, drive.ListRequest{
		Query:     query,
		Fields:    drive.RemoteFields,
		PageSize:  int64(ClampInt(q.Limit, 10, 1, 100)),
		PageToken: q.PageToken,
		OrderBy:   "modifiedTime desc",
		AllDrives: true,
	})
}

// IndexPage is one page of the web file index.
type IndexPage struct {
	Files    []models.DriveFile
	Page     int
	PageSize int
	Total    int64
}

// IndexedFiles pages through the signed-in owner's local index, newest first.
func (s *Service) IndexedFiles(ctx context.Context, userID, page, pageSize string) (*IndexPage, error) {
	if userID == "" {
		return nil, unauthorizedError("Unauthorized")
	}
	p := ClampInt(page, 1, 1, math.MaxInt32)
	size := ClampInt(pageSize, 25, 1, 100)

	files, total, err := s.store.PageDriveFiles(ctx, userID, p, size)
	if err != nil {
		return nil, fmt.Errorf("page files for %s: %w", userID, err)
	}
	return &IndexPage{Files: files, Page: p, PageSize: size, Total: total}, nil
}

// MoviesPage is a page of the owner's Movies folder.
type MoviesPage struct {
	Files         []*drivev3.File
	NextPageToken string
	FolderID      string
}

// Movies lists videos and shortcuts in the owner's Movies folder. An owner
// without such a folder gets an empty page.
func (s *Service) Movies(ctx context.Context, userID, pageSize, pageToken string) (*MoviesPage, error) {
	cred, err := s.ownerCredential(ctx, userID)
	if err != nil {
		return nil, err
	}
	token, err := s.accessToken(ctx, cred)
	if err != nil {
		return nil, err
	}

	folderID, err := s.drive.FindFolder(ctx, token, drive.MoviesFolderNames...)
	if err != nil {
		return nil, err
	}
	if folderID == "" {
		return &MoviesPage{Files: []*drivev3.File{}}, nil
	}

	page, err := s.drive.List(ctx, token, drive.ListRequest{
		Query:     drive.MoviesQuery(folderID),
		Fields:    drive.MovieFields,
		PageSize:  int64(ClampInt(pageSize, 30, 1, 100)),
		PageToken: pageToken,
		OrderBy:   "modifiedTime desc",
		AllDrives: true,
	})
	if err != nil {
		return nil, err
	}
	files := page.Files
	if files == nil {
		files = []*drivev3.File{}
	}
	return &MoviesPage{Files: files, NextPageToken: page.NextPageToken, FolderID: folderID}, nil
}

// Movie is a single Drive file with the id to play and its preview page.
type Movie struct {
	File       *drivev3.File
	TargetID   string
	PreviewURL string
}

// MarshalJSON flattens the file's fields next to targetId and previewUrl.
func (m Movie) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{}
	if m.File != nil {
		raw, err := json.Marshal(m.File)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
	}
	out["targetId"] = m.TargetID
	out["previewUrl"] = m.PreviewURL
	return json.Marshal(out)
}

// Movie reads one file. Shortcuts resolve to their target for playback.
func (s *Service) Movie(ctx context.Context, userID, fileID string) (*Movie, error) {
	cred, err := s.ownerCredential(ctx, userID)
	if err != nil {
		return nil, err
	}
	token, err := s.accessToken(ctx, cred)
	if err != nil {
		return nil, err
	}
	if fileID == "" {
		return nil, validationError("Missing id")
	}

	file, err := s.drive.Get(ctx, token, fileID, drive.FileFields)
	if err != nil {
		return nil, err
	}
	targetID := file.Id
	if file.ShortcutDetails != nil && file.ShortcutDetails.TargetId != "" {
		targetID = file.ShortcutDetails.TargetId
	}
	return &Movie{File: file, TargetID: targetID, PreviewURL: drive.PreviewURL(targetID)}, nil
}

// ClampInt parses raw as an int, falling back to def when it is empty or not a
// number, and clamps the result to [lo, hi].
func ClampInt(raw string, def, lo, hi int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		n = def
	}
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
