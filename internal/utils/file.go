package utils

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// decodable lists the extensions the capture sources can be loaded from
var decodable = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"bmp": true, "tiff": true, "tif": true, "webp": true,
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// GetFileExtension returns the lowercased file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsImageFile checks if a file has an extension a source can decode
func IsImageFile(filename string) bool {
	return decodable[GetFileExtension(filename)]
}

// IsURL reports whether location is an http(s) URL
func IsURL(location string) bool {
	u, err := url.Parse(location)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ArtifactPath names a file written for a capture:
// <dir>/<prefix><captureID>_<name>.<ext>
func ArtifactPath(dir, prefix, captureID, name, ext string) string {
	if ext == "" {
		ext = "jpg"
	}
	return filepath.Join(dir, fmt.Sprintf("%s%s_%s.%s", prefix, captureID, name, strings.ToLower(ext)))
}

// ListImageFiles lists the image files directly inside dir, sorted by name
func ListImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && IsImageFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// ExpandSources resolves camera source locations. URLs and files are kept
// as given, directories are replaced by the images they contain.
func ExpandSources(locations []string) ([]string, error) {
	var out []string
	for _, loc := range locations {
		loc = strings.TrimSpace(loc)
		switch {
		case loc == "":
			continue
		case IsURL(loc):
			out = append(out, loc)
		case DirExists(loc):
			files, err := ListImageFiles(loc)
			if err != nil {
				return nil, fmt.Errorf("failed to list %s: %w", loc, err)
			}
			out = append(out, files...)
		case FileExists(loc):
			if !IsImageFile(loc) {
				return nil, fmt.Errorf("not an image file: %s", loc)
			}
			out = append(out, loc)
		default:
			return nil, fmt.Errorf("source not found: %s", loc)
		}
	}
	return out, nil
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// SanitizeFilename replaces characters that are invalid in file names
func SanitizeFilename(filename string) string {
	result := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, filename)

	return strings.Trim(result, " .")
}

// FormatFileSize formats file size in human-readable format
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
