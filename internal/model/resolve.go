package model

import (
	"fmt"
	"path"
	"strings"
)

// allowedExtensions is the set of image extensions that may appear in
// destination filenames. Anything else falls back to ".jpg".
var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".webp": {},
}

// Resolve computes the destination filename for an image.
//
// The first image of a difficulty is named "{difficulty}{ext}", subsequent
// images "{difficulty}_{n}{ext}" where n is the 1-based position (so the
// second image gets "_2"). The extension comes from the URL path with any
// query string stripped, lower-cased, and restricted to the known image
// extensions; anything else defaults to ".jpg".
//
// Naming is purely positional: if the upstream image list is reordered, the
// mapping between local files and remote images changes with it. Callers
// relying on stable correspondence must rely on the upstream order.
func Resolve(difficulty, index int, url string) string {
	ext := extensionOf(url)
	if index == 0 {
		return fmt.Sprintf("%d%s", difficulty, ext)
	}
	return fmt.Sprintf("%d_%d%s", difficulty, index+1, ext)
}

// extensionOf extracts the allow-listed extension from a URL, defaulting to
// ".jpg".
func extensionOf(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		url = url[:i]
	}
	ext := strings.ToLower(path.Ext(url))
	if _, ok := allowedExtensions[ext]; !ok {
		return ".jpg"
	}
	return ext
}
