package constants

import "strings"

const (
	IMAGE = "IMAGE"
	TXT   = "TXT"
)

// FileTypes holds the allowed source types for a scan record.
var FileTypes = []string{IMAGE, TXT}

// AllowedExtensions holds the default allowed file extensions for card ingestion.
var AllowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
	"txt":  {},
}

// MaxImageMBDefault caps the decoded size of an uploaded card photo.
const MaxImageMBDefault = 10

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns IMAGE or TXT for a supported extension, "" otherwise.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "jpg", "jpeg", "png", "webp":
		return IMAGE
	case "txt":
		return TXT
	default:
		return ""
	}
}
