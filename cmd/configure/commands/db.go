package commands

import (
	"fmt"
	"os"

	"github.com/benvon/finance-dashboard/internal/config"
	"github.com/benvon/finance-dashboard/internal/database"
)

// openDB loads configuration and connects to the database. The returned
// close func logs rather than returns its error.
func openDB() (*config.Config, *database.DB, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.New(cfg.DatabaseURL,
		database.WithMaxOpenConns(2),
		database.WithMaxIdleConns(1),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	closeFn := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}
	return cfg, db, closeFn, nil
}
