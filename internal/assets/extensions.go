package assets

import (
	"path/filepath"
	"strings"
)

// Kind is the destination bucket of a relevant file.
type Kind string

const (
	KindStream Kind = "stream"
	KindData   Kind = "data"
)

var streamExtensions = map[string]struct{}{
	".ydd":  {},
	".ytd":  {},
	".yft":  {},
	".ydr":  {},
	".ybn":  {},
	".ytyp": {},
	".ymap": {},
}

var dataExtensions = map[string]struct{}{
	".meta": {},
	".ymt":  {},
}

// ClassifyExt returns the bucket for a lower-cased extension (with dot).
func ClassifyExt(ext string) (Kind, bool) {
	if _, ok := streamExtensions[ext]; ok {
		return KindStream, true
	}
	if _, ok := dataExtensions[ext]; ok {
		return KindData, true
	}
	return "", false
}

// ClassifyName returns the bucket for a file name, matching its extension
// case-insensitively.
func ClassifyName(name string) (Kind, bool) {
	return ClassifyExt(strings.ToLower(filepath.Ext(name)))
}

// StreamExtensions lists the stream asset extensions in sorted order.
func StreamExtensions() []string {
	return sortedKeys(streamExtensions)
}

// DataExtensions lists the data asset extensions in sorted order.
func DataExtensions() []string {
	return sortedKeys(dataExtensions)
}
