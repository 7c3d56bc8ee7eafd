package infra

import (
	"fmt"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (sequences, partial indexes).
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

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies the GORM schema plus SQL patches. Also used by
// integration tests against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	// gen_random_uuid() needs pgcrypto on PostgreSQL < 13
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Caixa{},
		&model.MovimentacaoCaixa{},
		&model.FechamentoCaixa{},
		&model.Cliente{},
		&model.Avaliacao{},
		&model.Produto{},
		&model.Venda{},
		&model.VendaItem{},
		&model.VendaPagamento{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Ticket numbers come from a dedicated sequence so they survive
		// deleted rows and stay gapless enough for the printed receipt.
		{"ticket sequence",
			`CREATE SEQUENCE IF NOT EXISTS vendas_numero_ticket_seq START 1`},
		// Partial index backing the reconciliation lookup of sale-day cash
		// movements. Only "venda" rows carry venda_id, so keep it partial.
		{"movimentacoes venda lookup", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_movimentacoes_caixa_venda') THEN
    CREATE INDEX idx_movimentacoes_caixa_venda
        ON movimentacoes_caixa (venda_id)
        WHERE venda_id IS NOT NULL;
  END IF;
END $$`},
		// Pending-approval listing hits this daily from the back office.
		{"fechamentos pendentes", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_fechamentos_pendentes') THEN
    CREATE INDEX idx_fechamentos_pendentes
        ON fechamentos_caixa (data_fechamento)
        WHERE status = 'pendente_aprovacao';
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
