package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
)

var renameFunc = os.Rename

// CopyFile streams src to dst with default permissions (0o644) and carries
// over the source modification time. dst must not exist: an existing file is
// reported as os.ErrExist and left untouched. Returns the bytes written.
func CopyFile(src, dst string) (int64, error) {
	return copyFile(src, dst, false)
}

// CopyFileVerified behaves like CopyFile and additionally checks size and
// SHA256 of the written data. Removes dst on mismatch.
func CopyFileVerified(src, dst string) (int64, error) {
	return copyFile(src, dst, true)
}

func copyFile(src, dst string, verify bool) (int64, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}
	if !srcInfo.Mode().IsRegular() {
		return 0, fmt.Errorf("copy %s: not a regular file", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = out.Close()
	}()

	var reader io.Reader = in
	var writer io.Writer = out
	var srcHasher, dstHasher hash.Hash
	if verify {
		srcHasher = sha256.New()
		dstHasher = sha256.New()
		reader = io.TeeReader(in, srcHasher)
		writer = io.MultiWriter(out, dstHasher)
	}

	written, err := io.Copy(writer, reader)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return written, err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return written, err
	}

	if verify {
		if written != srcInfo.Size() {
			_ = os.Remove(dst)
			return written, fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
		}
		if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
			_ = os.Remove(dst)
			return written, fmt.Errorf("copy hash mismatch: file corrupted during copy")
		}
	}

	mtime := srcInfo.ModTime()
	if err := os.Chtimes(dst, mtime, mtime); err != nil {
		return written, fmt.Errorf("preserve modification time: %w", err)
	}
	return written, nil
}

// MoveFile renames src to dst. When both sit on different filesystems it
// falls back to a verified copy followed by removal of src. dst must not
// exist. Returns the size of the moved file.
func MoveFile(src, dst string) (int64, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}
	if _, err := os.Lstat(dst); err == nil {
		return 0, &os.LinkError{Op: "move", Old: src, New: dst, Err: os.ErrExist}
	} else if !errors.Is(err, os.ErrNotExist) {
		return 0, err
	}

	err = renameFunc(src, dst)
	if err == nil {
		return srcInfo.Size(), nil
	}
	if !IsCrossDevice(err) {
		return 0, err
	}

	written, err := CopyFileVerified(src, dst)
	if err != nil {
		return written, fmt.Errorf("cross-device move: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return written, fmt.Errorf("remove source after cross-device move: %w", err)
	}
	return written, nil
}

// IsCrossDevice reports whether err is a rename failure across filesystems.
func IsCrossDevice(err error) bool {
	return isEXDEV(err)
}

// WriteFileAtomic replaces path with data through a temp file in the same
// directory followed by a rename.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return renameFunc(tmpName, path)
}
