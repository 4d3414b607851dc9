// Package fsutil copies and swaps directory trees.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const dirPerm = 0o755

// ErrExists is returned when a copy destination already exists.
var ErrExists = errors.New("destination already exists")

// CopyTree copies the directory src to dst, which must not exist yet.
// Regular files keep their permission bits and symlinks are recreated.
func CopyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", src)
	}

	_, err = os.Lstat(dst)
	if err == nil {
		return fmt.Errorf("%w: %s", ErrExists, dst)
	}

	err = os.MkdirAll(filepath.Dir(dst), dirPerm)
	if err != nil {
		return fmt.Errorf("creating parent of %s: %w", dst, err)
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}

			return os.Mkdir(target, info.Mode().Perm()|0o700)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}

			return os.Symlink(link, target)
		case d.Type().IsRegular():
			return copyFile(path, target)
		default:
			return fmt.Errorf("unsupported file type %s: %s", d.Type(), path)
		}
	})
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}

	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, in)

	return err
}

// Swappable for tests.
var (
	rename   = os.Rename
	copyTree = CopyTree
)

// ReplaceDir moves src into the place of dst. dst is first moved aside to a
// sibling backup and restored if src cannot be moved in, so a failed replace
// leaves dst as it was. When src and dst live on different filesystems the
// move falls back to a copy followed by removal of src.
func ReplaceDir(dst, src string) (err error) {
	backup, err := moveAside(dst)
	if err != nil {
		return err
	}

	if backup != "" {
		defer func() {
			if err != nil {
				err = errors.Join(err, restore(dst, backup))
				return
			}

			if rmErr := os.RemoveAll(filepath.Dir(backup)); rmErr != nil {
				err = fmt.Errorf("removing backup of %s: %w", dst, rmErr)
			}
		}()
	}

	err = rename(src, dst)
	if err == nil {
		return nil
	}

	err = copyTree(src, dst)
	if err != nil {
		return fmt.Errorf("moving %s to %s: %w", src, dst, err)
	}

	err = os.RemoveAll(src)
	if err != nil {
		return fmt.Errorf("removing %s after copy: %w", src, err)
	}

	return nil
}

// moveAside renames dst into a fresh sibling directory and returns its new
// path, or "" when dst does not exist.
func moveAside(dst string) (string, error) {
	_, err := os.Lstat(dst)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("stat %s: %w", dst, err)
	}

	root, err := os.MkdirTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".backup-*")
	if err != nil {
		return "", fmt.Errorf("creating backup dir for %s: %w", dst, err)
	}

	backup := filepath.Join(root, filepath.Base(dst))

	err = os.Rename(dst, backup)
	if err != nil {
		_ = os.Remove(root)
		return "", fmt.Errorf("backing up %s: %w", dst, err)
	}

	return backup, nil
}

// restore puts the backup back after a failed replace.
func restore(dst, backup string) error {
	err := os.RemoveAll(dst)
	if err != nil {
		return fmt.Errorf("clearing %s before restore: %w", dst, err)
	}

	err = os.Rename(backup, dst)
	if err != nil {
		return fmt.Errorf("restoring %s from %s: %w", dst, backup, err)
	}

	return os.Remove(filepath.Dir(backup))
}
