package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/onto16/internal/apperr"
	"github.com/starford/onto16/internal/metrics"
	"github.com/starford/onto16/internal/models"
	"github.com/starford/onto16/internal/profileio"
)

// LoadProfile reads a JSON or YAML profile document from disk.
func LoadProfile(path string) (models.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.Profile{}, fmt.Errorf("profile %s: %w", path, apperr.ErrNotFound)
		}
		return models.Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return profileio.ParseFile(filepath.Base(path), data)
}

// HashProfile returns the content hash of the profile document at path.
func HashProfile(path string) (string, error) {
	p, err := LoadProfile(path)
	if err != nil {
		return "", err
	}
	return metrics.Hash(p), nil
}

// CompareProfiles loads two profile documents and compares them.
func CompareProfiles(pathA, pathB string) (metrics.Comparison, error) {
	a, err := LoadProfile(pathA)
	if err != nil {
		return metrics.Comparison{}, err
	}
	b, err := LoadProfile(pathB)
	if err != nil {
		return metrics.Comparison{}, err
	}
	return metrics.Compare(a, b), nil
}
