package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"printflow/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches that GORM
// cannot express (partial indexes, the watermark seed row).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
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

	if err := db.AutoMigrate(
		&model.Orden{},
		&model.ArchivoProduccion{},
		&model.ItemReferencia{},
		&model.ServicioExtra{},
		&model.AreaMapeo{},
		&model.ConfiguracionGlobal{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle on its
// own. Each statement uses IF NOT EXISTS / DO NOTHING semantics so re-running
// on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Partial index for the measurement worker's pending-files query.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_archivos_pendientes_medicion') THEN
		    CREATE INDEX idx_archivos_pendientes_medicion
		        ON archivos_produccion (orden_id)
		        WHERE NOT medida_confirmada AND estado <> 'cancelado';
		  END IF;
		END $$`,
		// Watermark seed row — the first cycle starts from invoice 0.
		`INSERT INTO configuracion_global (clave, valor, updated_at)
		 VALUES ('ultima_factura_procesada', '0', NOW())
		 ON CONFLICT (clave) DO NOTHING`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}

// RunMigrations applies the schema patches for integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Orden{},
		&model.ArchivoProduccion{},
		&model.ItemReferencia{},
		&model.ServicioExtra{},
		&model.AreaMapeo{},
		&model.ConfiguracionGlobal{},
	); err != nil {
		return err
	}
	return applySchemaPatches(db)
}
