package infra

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewDatabase opens the GORM connection and applies any pending SQL
// migrations. Duplicate-key violations surface as gorm.ErrDuplicatedKey.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}

// RunMigrations executes every embedded migration at most once, in file name
// order, each inside its own transaction.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		nome TEXT PRIMARY KEY,
		aplicada_em TIMESTAMPTZ NOT NULL
	)`).Error; err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	arquivos, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(arquivos)

	for _, arquivo := range arquivos {
		var aplicada int64
		if err := db.Table("schema_migrations").Where("nome = ?", arquivo).Count(&aplicada).Error; err != nil {
			return fmt.Errorf("check %s: %w", arquivo, err)
		}
		if aplicada > 0 {
			continue
		}

		conteudo, err := migrationsFS.ReadFile(arquivo)
		if err != nil {
			return fmt.Errorf("read %s: %w", arquivo, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(conteudo)).Error; err != nil {
				return err
			}
			return tx.Exec("INSERT INTO schema_migrations (nome, aplicada_em) VALUES (?, ?)", arquivo, time.Now().UTC()).Error
		})
		if err != nil {
			return fmt.Errorf("apply %s: %w", arquivo, err)
		}
		log.Info().Str("migration", arquivo).Msg("migration applied")
	}
	return nil
}
