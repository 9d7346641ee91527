package infra

import (
	"fmt"

	"grifopos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, applies the
// pre-migration patches, runs AutoMigrate for every table, then applies the
// idempotent SQL patches GORM cannot express (partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// unique index violations surface as gorm.ErrDuplicatedKey
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
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates the schema. Safe to re-run.
func RunMigrations(db *gorm.DB) error {
	if err := applyPreMigrationPatches(db); err != nil {
		return fmt.Errorf("pre-migration patches: %w", err)
	}
	if err := db.AutoMigrate(
		&model.Turno{},
		&model.ReporteVerificado{},
		&model.Precio{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applyPreMigrationPatches creates objects the models depend on before
// AutoMigrate touches the tables.
func applyPreMigrationPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"gen_random_uuid", `CREATE EXTENSION IF NOT EXISTS pgcrypto`},
		// turnos.secuencia is drawn from here by TurnoRepository.Create
		{"turnos_secuencia_seq", `CREATE SEQUENCE IF NOT EXISTS turnos_secuencia_seq`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("pre-patch %q: %w", p.descr, err)
		}
	}
	return nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle on its
// own. Each statement uses IF NOT EXISTS so re-running is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// one shift per island/date/shift name
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_turnos_slot
		    ON turnos (isla_id, fecha, nombre_turno)`,
		// at most one open shift per island
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_turnos_isla_abierto
		    ON turnos (isla_id) WHERE estado = 'abierto'`,
		// one report per shift, one day report per date
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reportes_turno
		    ON reportes_verificados (turno_id) WHERE tipo = 'turno'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reportes_dia
		    ON reportes_verificados (fecha) WHERE tipo = 'dia'`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
