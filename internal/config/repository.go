package config

import (
	"fmt"
	"os"

	"marketplace/internal/repository/sqlite"
)

// CreateRepository opens the session store described by the configuration
func CreateRepository(config *Config) (sqlite.Repository, error) {
	repo, err := sqlite.NewWithOptions(config.GetStoragePath(), sqlite.Options{
		QueryTimeout:   config.GetQueryTimeout(),
		DirPermissions: os.FileMode(config.Storage.DirPermissions),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session storage: %w", err)
	}

	return repo, nil
}

// CreateTestRepository creates an in-memory repository for testing
func CreateTestRepository() (sqlite.Repository, error) {
	repo, err := sqlite.New(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test storage: %w", err)
	}

	return repo, nil
}
