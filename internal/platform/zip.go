package platform

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ZipDestination makes sure path ends in ".zip", replacing any other
// extension.
func ZipDestination(path string) string {
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, ".zip") {
		return path
	}
	return strings.TrimSuffix(path, ext) + ".zip"
}

// zipDir writes srcDir into dest with the folder name as the top entry.
func zipDir(srcDir, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("platform: create archive: %w", err)
	}
	zw := zip.NewWriter(out)

	parent := filepath.Dir(srcDir)
	walkErr := filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(parent, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if d.IsDir() {
			_, err := zw.Create(name + "/")
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = name
		hdr.Method = zip.Deflate
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})

	closeErr := zw.Close()
	if err := out.Close(); err != nil && closeErr == nil {
		closeErr = err
	}
	if walkErr != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("platform: archive %s: %w", srcDir, walkErr)
	}
	if closeErr != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("platform: finish archive: %w", closeErr)
	}
	return nil
}
