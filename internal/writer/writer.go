package writer

import (
	"errors"
	"os"
	"path/filepath"

	"readme_updater/internal/apperr"
)

// File - содержимое, которое нужно записать по пути Path.
type File struct {
	Path string
	Data []byte
}

type staged struct {
	tmp  string
	path string
}

// WriteAll атомарно заменяет все файлы: сначала пишет каждый во временный файл рядом с целевым,
// и только если все записи удались, переименовывает их на место.
// При ошибке временные файлы удаляются, целевые остаются нетронутыми.
func WriteAll(files []File) error {
	var done []staged
	cleanup := func() {
		for _, s := range done {
			os.Remove(s.tmp)
		}
	}

	for _, f := range files {
		tmp, err := writeTemp(f)
		if err != nil {
			cleanup()
			return &apperr.PersistenceError{Path: f.Path, Err: err}
		}
		done = append(done, staged{tmp: tmp, path: f.Path})
	}

	for i, s := range done {
		if err := os.Rename(s.tmp, s.path); err != nil {
			for _, rest := range done[i:] {
				os.Remove(rest.tmp)
			}
			return &apperr.PersistenceError{Path: s.path, Err: err}
		}
	}
	return nil
}

func writeTemp(f File) (string, error) {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	perm := os.FileMode(0o644)
	if info, err := os.Stat(f.Path); err == nil {
		if info.IsDir() {
			return "", errors.New("target is a directory")
		}
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".tmp-*")
	if err != nil {
		return "", err
	}
	name := tmp.Name()
	fail := func(err error) (string, error) {
		tmp.Close()
		os.Remove(name)
		return "", err
	}

	if _, err := tmp.Write(f.Data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}
