// Package assets classifies the files found under a source folder.
//
// Classification happens in two passes. Collect walks a source tree and keeps
// only files whose extension is a known stream asset (models, textures,
// collisions, maps) or a known data asset (.meta/.ymt), matching on the
// extension alone. DetectDataType then reads a bounded prefix of a .meta file
// and maps keyword hits to the data_file type the FiveM loader expects.
//
// The keyword rules are ordered and the first match wins: apparel beats
// components, components beat overlays, overlays beat content unlocks. Files
// that cannot be read or decoded are reported as DataTypeUnknown, never as an
// error.
package assets
