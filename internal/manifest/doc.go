// Package manifest reads and extends a resource's fxmanifest.lua.
//
// Parse performs a deliberately loose scan: every quoted token anywhere in the
// file counts as a declared path, and every data_file line counts as a
// declared mapping. Hand-written manifests therefore never get entries
// declared twice, at the price of occasionally treating an unrelated string
// as a path.
//
// Merge never rewrites existing bytes. New entries are appended as a
// self-contained, commented block; when nothing is new the file is left
// alone. A missing manifest is created with the cerulean/gta5 header first.
package manifest
