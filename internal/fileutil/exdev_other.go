//go:build !unix && !windows

package fileutil

func isEXDEV(error) bool { return false }
