package textutil

import "strings"

// SourcePrefix converts a source folder name into the prefix used for the
// second collision step: spaces become underscores, nothing else changes.
func SourcePrefix(folderName string) string {
	return strings.ReplaceAll(folderName, " ", "_")
}

// SlashPath trims a manifest path and converts backslashes to forward slashes.
func SlashPath(p string) string {
	return strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
}

// DirectiveKey returns the comparison key for an ensure-list line, or "" for
// blank lines and # comments.
func DirectiveKey(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ""
	}
	return strings.ToLower(line)
}
