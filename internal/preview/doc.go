// Package preview computes what a build would do without writing anything:
// the resolved target of every file, the detected data types, the collision
// steps and the manifest block that would be appended. It also locates a
// preview image shipped inside a source folder.
package preview
