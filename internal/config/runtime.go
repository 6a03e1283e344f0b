package config

import (
	"os"
	"path/filepath"
)

// GetRuntimePath resolves the runtime directory before any config is parsed,
// so the .env file inside it can be loaded first.
func GetRuntimePath() string {
	return resolveRuntimePath(os.Getenv("MEDHELP_RUNTIME_PATH"))
}

func resolveRuntimePath(path string) string {
	if path == "" {
		path = ".medhelp"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
