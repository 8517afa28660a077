package drive

import (
	"fmt"
	"strings"
)

// Field projections for the calls this service makes.
const (
	SyncFields   = "nextPageToken, files(id,name,mimeType,parents,webViewLink,webContentLink,modifiedTime)"
	StatsFields  = "nextPageToken, files(id,mimeType)"
	HeadFields   = "files(modifiedTime)"
	RemoteFields = "nextPageToken, files(id,name,mimeType,webViewLink,webContentLink,thumbnailLink,iconLink,hasThumbnail,modifiedTime,size,shortcutDetails(targetMimeType,targetId))"
	MovieFields  = "nextPageToken, files(id,name,mimeType,webViewLink,webContentLink,thumbnailLink,modifiedTime,size,shortcutDetails(targetMimeType,targetId))"
	FileFields   = "id,name,mimeType,webViewLink,webContentLink,thumbnailLink,modifiedTime,size,shortcutDetails(targetMimeType,targetId)"
)

// DefaultRemoteQuery is used by remote listings when the caller sends none.
const DefaultRemoteQuery = "trashed=false"

// StatsQuery selects every item counted by the stats scan.
const StatsQuery = "trashed = false"

// MoviesFolderNames are the folder names searched for the movie listing.
var MoviesFolderNames = []string{"Movies", "movies"}

// SyncQuery selects the files mirrored into the local index.
func SyncQuery() string {
	docs := make([]string, 0, len(IndexableDocumentTypes))
	for _, mime := range IndexableDocumentTypes {
		docs = append(docs, fmt.Sprintf("mimeType = '%s'", mime))
	}
	return fmt.Sprintf(
		"trashed = false and (mimeType contains 'image/' or mimeType = '%s' or mimeType contains 'video/' or (%s))",
		MimeTypePDF, strings.Join(docs, " or "))
}

// FolderQuery matches non-trashed folders named after any of names.
func FolderQuery(names ...string) string {
	clauses := make([]string, 0, len(names))
	for _, name := range names {
		clauses = append(clauses, fmt.Sprintf("name = '%s'", escapeQuery(name)))
	}
	return fmt.Sprintf("mimeType = '%s' and trashed = false and (%s)", MimeTypeFolder, strings.Join(clauses, " or "))
}

// MoviesQuery lists the videos and shortcuts directly inside folderID.
func MoviesQuery(folderID string) string {
	return fmt.Sprintf("('%s' in parents) and trashed=false and (mimeType contains 'video/' or mimeType = '%s')",
		escapeQuery(folderID), MimeTypeShortcut)
}

// PreviewURL is the embeddable player page of a Drive file.
func PreviewURL(fileID string) string {
	return "https://drive.google.com/file/d/" + fileID + "/preview"
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
