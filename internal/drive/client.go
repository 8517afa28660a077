// Package drive talks to the Google Drive v3 API on behalf of a signed-in owner
// and holds the rules that turn Drive files into local index entries.
package drive

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pysugar/drivelink/internal/config"
	"github.com/pysugar/drivelink/internal/util"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// UpstreamError is a non-success answer from Google. Handlers pass Status and
// Message through to the caller.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("drive: upstream returned %d: %s", e.Status, e.Message)
}

// ListRequest describes one files.list call.
type ListRequest struct {
	Query     string
	Fields    string
	PageSize  int64
	PageToken string
	OrderBy   string
	AllDrives bool
}

// Page is one page of a files.list response.
type Page struct {
	Files         []*drivev3.File `json:"files"`
	NextPageToken string          `json:"nextPageToken,omitempty"`
}

// Client issues Drive requests with a caller supplied access token. A single
// limiter is shared by every owner served by the process.
type Client struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Drive client. endpoint overrides the API base path when set.
func NewClient(cfg config.DriveConfig, endpoint string) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
	}
}

func (c *Client) service(ctx context.Context, accessToken string) (*drivev3.Service, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	base := context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	authed := oauth2.NewClient(base, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	opts := []option.ClientOption{option.WithHTTPClient(authed)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	return drivev3.NewService(ctx, opts...)
}

// List fetches one page of files.
func (c *Client) List(ctx context.Context, accessToken string, req ListRequest) (*Page, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	call := svc.Files.List().Context(ctx)
	if req.Query != "" {
		call = call.Q(req.Query)
	}
	if req.Fields != "" {
		call = call.Fields(googleapi.Field(req.Fields))
	}
	if req.PageSize > 0 {
		call = call.PageSize(req.PageSize)
	}
	if req.PageToken != "" {
		call = call.PageToken(req.PageToken)
	}
	if req.OrderBy != "" {
		call = call.OrderBy(req.OrderBy)
	}
	if req.AllDrives {
		call = call.IncludeItemsFromAllDrives(true).SupportsAllDrives(true)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, mapError("files.list", err)
	}
	return &Page{Files: resp.Files, NextPageToken: resp.NextPageToken}, nil
}

// LatestModifiedTime returns the modification time of the most recently changed
// non-trashed file, or "" when the Drive is empty.
func (c *Client) LatestModifiedTime(ctx context.Context, accessToken string) (string, error) {
	page, err := c.List(ctx, accessToken, ListRequest{
		Query:     DefaultRemoteQuery,
		Fields:    HeadFields,
		PageSize:  1,
		OrderBy:   "modifiedTime desc",
		AllDrives: true,
	})
	if err != nil {
		return "", err
	}
	if len(page.Files) == 0 {
		return "", nil
	}
	return page.Files[0].ModifiedTime, nil
}

// Get reads a single file's metadata.
func (c *Client) Get(ctx context.Context, accessToken, fileID, fields string) (*drivev3.File, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	call := svc.Files.Get(fileID).Context(ctx).SupportsAllDrives(true)
	if fields != "" {
		call = call.Fields(googleapi.Field(fields))
	}
	file, err := call.Do()
	if err != nil {
		return nil, mapError("files.get", err)
	}
	return file, nil
}

// FindFolder returns the id of the first non-trashed folder named like one of
// names, compared case-insensitively, or "" when none exists.
func (c *Client) FindFolder(ctx context.Context, accessToken string, names ...string) (string, error) {
	page, err := c.List(ctx, accessToken, ListRequest{
		Query:     FolderQuery(names...),
		Fields:    "files(id,name,mimeType)",
		PageSize:  10,
		OrderBy:   "name asc",
		AllDrives: true,
	})
	if err != nil {
		return "", err
	}
	for _, f := range page.Files {
		if f.MimeType != MimeTypeFolder {
			continue
		}
		for _, name := range names {
			if strings.EqualFold(f.Name, name) {
				return f.Id, nil
			}
		}
	}
	return "", nil
}

func mapError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = http.StatusText(gerr.Code)
		}
		log.Printf("⚠️ Drive %s failed (%d): %s", op, gerr.Code, util.TruncateLog(strings.TrimSpace(gerr.Body), 512))
		return &UpstreamError{Status: gerr.Code, Message: msg}
	}
	return fmt.Errorf("drive %s: %w", op, err)
}
