package shared

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/mbx/internal/models"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
	".webp": true, ".svg": true, ".tiff": true, ".tif": true, ".heic": true,
}

var audioExtensions = map[string]bool{
	".mp3": true, ".flac": true, ".ogg": true, ".oga": true, ".opus": true,
	".m4a": true, ".aac": true, ".wav": true, ".wma": true,
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true, ".wmv": true,
	".flv": true, ".webm": true, ".m4v": true, ".mpeg": true, ".mpg": true,
	".3gp": true, ".ts": true,
}

// KindForExt returns the [models.MediaKind] for a file extension.
// The extension may be upper case and must include the leading dot.
func KindForExt(ext string) models.MediaKind {
	ext = strings.ToLower(ext)
	switch {
	case imageExtensions[ext]:
		return models.KindImage
	case audioExtensions[ext]:
		return models.KindAudio
	case videoExtensions[ext]:
		return models.KindVideo
	default:
		return models.KindUnknown
	}
}

// KindForURL guesses a kind from the path of a URL, defaulting to video for streams.
func KindForURL(raw string) models.MediaKind {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	if kind := KindForExt(filepath.Ext(raw)); kind != models.KindUnknown {
		return kind
	}
	return models.KindVideo
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
