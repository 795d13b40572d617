package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFile is the name of the optional vault configuration file.
const ConfigFile = "notegraph.yaml"

// FindRoot walks up from startDir looking for a vault root indicator:
// a .notegraph directory, a notegraph.yaml file or a .git directory.
// It returns the absolute path of the first match.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, DefaultSystemDir) || hasFile(dir, ConfigFile) || hasFile(dir, ".git") {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("root not found")
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
