package devserve

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolveServeDir turns a possibly relative path into the absolute directory
// to serve. The path must exist and be a directory.
func ResolveServeDir(pathArg string) (string, error) {
	dir, err := filepath.Abs(pathArg)
	if err != nil {
		return "", err
	}
	stat, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("directory not found: %s", dir)
		}
		return "", err
	}
	if !stat.IsDir() {
		return "", fmt.Errorf("not a directory: %s", dir)
	}
	return dir, nil
}
