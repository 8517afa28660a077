package drive

import (
	"strings"
	"time"

	"github.com/pysugar/drivelink/internal/db/models"
	drivev3 "google.golang.org/api/drive/v3"
)

const (
	MimeTypeFolder   = "application/vnd.google-apps.folder"
	MimeTypeShortcut = "application/vnd.google-apps.shortcut"
	MimeTypePDF      = "application/pdf"
)

// IndexableDocumentTypes are the document formats mirrored besides images, PDFs and videos.
var IndexableDocumentTypes = []string{
	"application/vnd.google-apps.document",
	"application/vnd.google-apps.spreadsheet",
	"application/vnd.google-apps.presentation",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"text/plain",
	"application/rtf",
	"application/vnd.oasis.opendocument.text",
}

// Category is the stats bucket of a Drive item.
type Category string

const (
	CategoryFolder Category = "folder"
	CategoryPDF    Category = "pdf"
	CategoryImage  Category = "image"
	CategoryVideo  Category = "video"
	CategoryOther  Category = "other"
)

// Classify buckets a MIME type. The first matching rule wins.
func Classify(mimeType string) Category {
	switch {
	case mimeType == MimeTypeFolder:
		return CategoryFolder
	case strings.HasPrefix(mimeType, "image/"):
		return CategoryImage
	case mimeType == MimeTypePDF:
		return CategoryPDF
	case strings.HasPrefix(mimeType, "video/"):
		return CategoryVideo
	default:
		return CategoryOther
	}
}

// Count adds one item of category c to counts. Other items are not counted.
func Count(counts *models.CategoryCounts, c Category) {
	switch c {
	case CategoryFolder:
		counts.Folder++
	case CategoryPDF:
		counts.PDF++
	case CategoryImage:
		counts.Image++
	case CategoryVideo:
		counts.Video++
	}
}

// IsIndexable reports whether a file of mimeType belongs in the local index.
func IsIndexable(mimeType string) bool {
	if strings.HasPrefix(mimeType, "image/") || strings.HasPrefix(mimeType, "video/") || mimeType == MimeTypePDF {
		return true
	}
	for _, doc := range IndexableDocumentTypes {
		if mimeType == doc {
			return true
		}
	}
	return false
}

// Tokenize splits a file name into lowercase alphanumeric tokens for local
// search. A trailing token equal to the file's extension is dropped.
func Tokenize(name string) []string {
	tokens := splitTokens(name)
	if len(tokens) == 0 {
		return []string{}
	}

	if dot := strings.LastIndex(name, "."); dot >= 0 {
		ext := strings.ToLower(name[dot+1:])
		if ext != "" && tokens[len(tokens)-1] == ext {
			tokens = tokens[:len(tokens)-1]
		}
	}
	return tokens
}

func splitTokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

// MatchesQuery reports whether every token of query is a prefix of some token in tokens.
// Queries are not file names, so no extension is dropped.
func MatchesQuery(tokens []string, query string) bool {
	for _, want := range splitTokens(query) {
		found := false
		for _, have := range tokens {
			if strings.HasPrefix(have, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ToIndexRecord normalizes a Drive file into a File Index entry for owner.
func ToIndexRecord(owner string, f *drivev3.File) *models.DriveFile {
	record := &models.DriveFile{
		OwnerUserID:       owner,
		FileID:            f.Id,
		FileName:          f.Name,
		FileType:          f.MimeType,
		WebViewLink:       f.WebViewLink,
		DriveDownloadLink: f.WebContentLink,
		Tokens:            Tokenize(f.Name),
	}
	if len(f.Parents) > 0 {
		record.ParentFolder = f.Parents[0]
	}
	if f.ModifiedTime != "" {
		if modified, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			record.LastModified = &modified
		}
	}
	return record
}
