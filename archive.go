package allocbench

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Archive compresses dir into outDir/ArchiveName and returns the archive
// path. Entries are named relative to dir's parent so the archive unpacks
// into a directory named like dir. The archive only appears under its final
// name once complete.
func Archive(dir, outDir string) (string, error) {
	dir = filepath.Clean(dir)
	dst := filepath.Join(outDir, ArchiveName)

	tmp, err := os.CreateTemp(outDir, ArchiveName+".*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	skip := map[string]bool{}
	for _, p := range []string{tmp.Name(), dst} {
		if abs, err := filepath.Abs(p); err == nil {
			skip[abs] = true
		}
	}

	gz := gzip.NewWriter(tmp)
	tw := tar.NewWriter(gz)
	root := filepath.Base(dir)
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if abs, err := filepath.Abs(path); err == nil && skip[abs] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsDir() && !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(filepath.Join(root, rel))
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return "", err
	}
	if err := tw.Close(); err != nil {
		return "", err
	}
	if err := gz.Close(); err != nil {
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", err
	}
	return dst, nil
}
