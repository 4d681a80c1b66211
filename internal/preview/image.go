package preview

import (
	"os"
	"path/filepath"
	"strings"
)

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
}

var preferredImages = map[string]struct{}{
	"preview.png": {}, "preview.jpg": {}, "preview.jpeg": {}, "preview.webp": {},
	"thumb.png": {}, "thumb.jpg": {}, "thumb.jpeg": {}, "thumb.webp": {},
	"thumbnail.png": {}, "thumbnail.jpg": {}, "thumbnail.jpeg": {}, "thumbnail.webp": {},
	"showcase.png": {}, "showcase.jpg": {},
}

// FindImage returns the preview image of a source folder. Images directly in
// folder come before images one level down; a preferred name such as
// preview.png or thumbnail.jpg wins over any other image.
func FindImage(folder string) (string, bool) {
	top, err := os.ReadDir(folder)
	if err != nil {
		return "", false
	}

	var candidates []string
	for _, entry := range top {
		if !entry.IsDir() && isImage(entry.Name()) {
			candidates = append(candidates, filepath.Join(folder, entry.Name()))
		}
	}
	for _, entry := range top {
		if !entry.IsDir() {
			continue
		}
		sub := filepath.Join(folder, entry.Name())
		children, err := os.ReadDir(sub)
		if err != nil {
			continue
		}
		for _, child := range children {
			if !child.IsDir() && isImage(child.Name()) {
				candidates = append(candidates, filepath.Join(sub, child.Name()))
			}
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	for _, c := range candidates {
		if _, ok := preferredImages[strings.ToLower(filepath.Base(c))]; ok {
			return c, true
		}
	}
	return candidates[0], true
}

func isImage(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}
