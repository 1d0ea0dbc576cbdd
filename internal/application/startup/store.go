package startup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
	schema "github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/database"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/persistence/database"
	persistence "github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/persistence/leads"
	"github.com/AtRiskMedia/adgrant-leads/pkg/config"
)

// Store kinds accepted by LEADS_STORE.
const (
	StoreFile   = "file"
	StoreSQL    = "sql"
	StoreSQLite = "sqlite"
)

// StoreOptions selects and locates the lead store.
type StoreOptions struct {
	Kind              string
	File              string
	Driver            string
	URL               string
	AuthToken         string
	QuarantineCorrupt bool
}

// StoreOptionsFromConfig reads the store selection from the environment defaults.
func StoreOptionsFromConfig() StoreOptions {
	return StoreOptions{
		Kind:              config.LeadsStore,
		File:              config.LeadsFile,
		Driver:            config.LeadsDBDriver,
		URL:               config.LeadsDBURL,
		AuthToken:         config.LeadsDBAuthToken,
		QuarantineCorrupt: config.LeadsQuarantineCorrupt,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenLeadStore opens the configured repository and verifies it is readable.
// The returned closer releases any database connection.
func OpenLeadStore(opts StoreOptions, logger *logging.ChanneledLogger) (leads.Repository, io.Closer, error) {
	switch strings.ToLower(opts.Kind) {
	case "", StoreFile:
		repo := persistence.NewFileRepository(opts.File, logger)
		if err := verifyFileStore(repo, opts.QuarantineCorrupt, logger); err != nil {
			return nil, nil, err
		}
		logger.Startup().Info("Using file lead store", "path", repo.Path())
		return repo, nopCloser{}, nil

	case StoreSQL, StoreSQLite, database.DriverSQLite, database.DriverLibSQL:
		driver := opts.Driver
		switch strings.ToLower(opts.Kind) {
		case StoreSQLite, database.DriverSQLite:
			driver = database.DriverSQLite
		case database.DriverLibSQL:
			driver = database.DriverLibSQL
		}
		if driver == "" {
			driver = database.DriverSQLite
		}
		dsn := opts.URL
		if driver == database.DriverLibSQL {
			dsn = database.LibSQLDSN(opts.URL, opts.AuthToken)
		}

		db, err := database.NewConnectionWithLogger(driver, dsn, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open lead database: %w", err)
		}
		if err := schema.NewTableCreator().CreateSchema(db.DB); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to create lead schema: %w", err)
		}
		logger.Startup().Info("Using SQL lead store", "driver", driver)
		return persistence.NewSQLRepository(db, logger), db, nil

	default:
		return nil, nil, fmt.Errorf("unknown lead store %q (want %s, %s or %s)", opts.Kind, StoreFile, StoreSQLite, StoreSQL)
	}
}

// verifyFileStore fails fast on an unparseable file unless quarantine is enabled,
// in which case the bad file is moved aside and an empty store is used.
func verifyFileStore(repo *persistence.FileRepository, quarantine bool, logger *logging.ChanneledLogger) error {
	_, err := repo.LoadAll(context.Background())
	if err == nil {
		return nil
	}
	if !errors.Is(err, leads.ErrStorageCorrupt) || !quarantine {
		return fmt.Errorf("lead store %s is unusable: %w", repo.Path(), err)
	}

	moved, qErr := repo.Quarantine()
	if qErr != nil {
		return fmt.Errorf("failed to quarantine corrupt lead store: %w", qErr)
	}
	logger.Startup().Warn("Corrupt lead store quarantined, starting empty", "path", repo.Path(), "movedTo", moved)
	return nil
}
