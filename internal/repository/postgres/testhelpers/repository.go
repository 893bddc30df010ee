package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"github.com/residential-history/internal/repository/postgres"
	"go.uber.org/zap"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewTableRepositoryForTest creates a table repository with test database and logger
func NewTableRepositoryForTest(db *sqlx.DB, logger *zap.Logger) postgres.TableRepository {
	return postgres.NewTableRepository(NewDBForTest(db, logger))
}
