// Package fileutil provides small local-file helpers: gzip compression of
// files and directories, and line counting.
package fileutil

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// GzipFile compresses a file to <path>.gz next to the original. The original
// is left in place; an existing destination is an error.
func GzipFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("fileutil: %s is not a regular file", path)
	}

	dst := path + ".gz"
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("fileutil: %s already exists", dst)
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	zw := gzip.NewWriter(out)
	if _, err := io.Copy(zw, src); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := zw.Close(); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// GzipDirectory archives a directory to <dir>.tar.gz next to the original,
// with the directory's base name as the top-level entry. An existing
// destination is an error.
func GzipDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("fileutil: %s is not a directory", path)
	}

	dst := filepath.Clean(path) + ".tar.gz"
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("fileutil: %s already exists", dst)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	zw := gzip.NewWriter(out)
	tw := tar.NewWriter(zw)
	base := filepath.Base(filepath.Clean(path))

	walkErr := filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}

		hdr, err := tar.FileInfoHeader(fi, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(filepath.Join(base, rel))
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if walkErr != nil {
		tw.Close()
		zw.Close()
		out.Close()
		os.Remove(dst)
		return walkErr
	}

	if err := tw.Close(); err != nil {
		zw.Close()
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := zw.Close(); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// LineCount returns the number of newline characters in a file, matching the
// behavior of wc -l.
func LineCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	r := bufio.NewReader(f)
	buf := make([]byte, 64*1024)
	for {
		n, err := r.Read(buf)
		count += bytes.Count(buf[:n], []byte{'\n'})
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return 0, err
		}
	}
}
