package shared

import (
	"bufio"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/mbx/internal/models"
)

// ParseSTRM returns the first non-empty, non-comment line of a .strm file.
func ParseSTRM(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, nil
	}
	return "", scanner.Err()
}

// ParseURLFile reads an internet shortcut. It accepts both the INI form
// ("URL=..." under [InternetShortcut]) and a bare URL on the first non-empty line.
func ParseURLFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	first := ""
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if k, v, ok := strings.Cut(line, "="); ok && strings.EqualFold(strings.TrimSpace(k), "url") {
			return strings.TrimSpace(v), nil
		}
		if first == "" && !strings.HasPrefix(line, "[") {
			first = line
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return first, nil
}

// FileTarget resolves a file on disk to a playable URL and media kind.
//
// Media files resolve to a file:// URL, .strm and .url shortcuts to the URL they contain.
// Anything else reports false.
func FileTarget(path string) (string, models.MediaKind, bool) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".strm", ".url":
		var target string
		var err error
		if ext == ".strm" {
			target, err = ParseSTRM(path)
		} else {
			target, err = ParseURLFile(path)
		}
		if err != nil || target == "" {
			return "", models.KindUnknown, false
		}
		return target, KindForURL(target), true
	}

	kind := KindForExt(ext)
	if kind == models.KindUnknown {
		return "", models.KindUnknown, false
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), kind, true
}
