package common

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

func GenerateHash(path string) (string, error) {
	var hash string

	err := filepath.Walk(path,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() && skipDir(info.Name()) {
				return filepath.SkipDir
			}

			if !info.IsDir() && info.Mode()&os.ModeSymlink != os.ModeSymlink {
				fh, err := GetFileMd5Hash(path)
				if err != nil {
					return err
				}
				hash = AppendHash(hash, fh)
			}

			return nil
		})

	return hash, err
}

// skipDir leaves out directories that never end up in the image, so
// deploy-only edits do not force a rebuild.
func skipDir(name string) bool {
	if name == "infra" || name == "node_modules" {
		return true
	}
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func GetFileMd5Hash(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}

	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

func AppendHash(hash1, hash2 string) string {
	h := md5.New()
	io.WriteString(h, fmt.Sprintf("%s%s", hash1, hash2))

	return fmt.Sprintf("%x", h.Sum(nil))
}
