package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadEnvFiles loads .env files into the process environment, in order.
// Variables already set are never overridden, so earlier files win over
// later ones. Missing files are skipped. It returns the files that were loaded.
func LoadEnvFiles(paths ...string) ([]string, error) {
	var loaded []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, &InvalidError{Var: p, Err: err}
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}
