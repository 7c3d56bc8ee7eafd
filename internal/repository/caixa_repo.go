package repository

import (
	"context"
	"errors"
	"time"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CaixaRepository interface {
	Create(ctx context.Context, c *model.Caixa) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Caixa, error)
	FindByNome(ctx context.Context, nome string) (*model.Caixa, error)
	List(ctx context.Context, incluirInativos bool) ([]model.Caixa, error)
	Update(ctx context.Context, c *model.Caixa) error

	// AplicarMovimentacao inserts a ledger entry and updates the cached
	// saldo of the registers it touches, atomically.
	AplicarMovimentacao(ctx context.Context, m *model.MovimentacaoCaixa) error
	// AplicarMovimentacaoVenda is the sale-movement variant: the insert uses
	// ON CONFLICT (venda_id) DO NOTHING, so a concurrent duplicate is
	// reported as inserida=false instead of an error.
	AplicarMovimentacaoVenda(ctx context.Context, m *model.MovimentacaoCaixa) (inserida bool, err error)
	// AplicarTransferencia records the paired saida+entrada movements of an
	// inter-register transfer in one transaction.
	AplicarTransferencia(ctx context.Context, saida, entrada *model.MovimentacaoCaixa) error

	FindMovimentacaoPorVenda(ctx context.Context, vendaID string) (*model.MovimentacaoCaixa, error)
	ListMovimentacoes(ctx context.Context, caixaID uuid.UUID, inicio, fim time.Time) ([]model.MovimentacaoCaixa, error)
	// SomaMovimentacoesDia returns the signed net effect of the register's
	// movements inside [inicio, fim): destino entries add, origem entries
	// subtract. With apenasManuais the "venda" kind is excluded.
	SomaMovimentacoesDia(ctx context.Context, caixaID uuid.UUID, inicio, fim time.Time, apenasManuais bool) (decimal.Decimal, error)
}

type caixaRepo struct{ db *gorm.DB }

func NewCaixaRepository(db *gorm.DB) CaixaRepository { return &caixaRepo{db: db} }

func (r *caixaRepo) Create(ctx context.Context, c *model.Caixa) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *caixaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Caixa, error) {
	var c model.Caixa
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *caixaRepo) FindByNome(ctx context.Context, nome string) (*model.Caixa, error) {
	var c model.Caixa
	err := r.db.WithContext(ctx).Where("nome = ?", nome).First(&c).Error
	return &c, err
}

func (r *caixaRepo) List(ctx context.Context, incluirInativos bool) ([]model.Caixa, error) {
	var caixas []model.Caixa
	q := r.db.WithContext(ctx).Order("nome ASC")
	if !incluirInativos {
		q = q.Where("ativo = true")
	}
	err := q.Find(&caixas).Error
	return caixas, err
}

func (r *caixaRepo) Update(ctx context.Context, c *model.Caixa) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *caixaRepo) AplicarMovimentacao(ctx context.Context, m *model.MovimentacaoCaixa) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return aplicarSaldo(tx, m)
	})
}

func (r *caixaRepo) AplicarMovimentacaoVenda(ctx context.Context, m *model.MovimentacaoCaixa) (bool, error) {
	inserida := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "venda_id"}},
			DoNothing: true,
		}).Create(m)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race against another recorder — the ledger already
			// has this sale. No saldo update.
			return nil
		}
		inserida = true
		return aplicarSaldo(tx, m)
	})
	return inserida, err
}

func (r *caixaRepo) AplicarTransferencia(ctx context.Context, saida, entrada *model.MovimentacaoCaixa) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []*model.MovimentacaoCaixa{saida, entrada} {
			if err := tx.Create(m).Error; err != nil {
				return err
			}
			if err := aplicarSaldo(tx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

// aplicarSaldo folds a movement into the cached saldo of the registers it
// touches. Valor is always positive; the side decides the sign.
func aplicarSaldo(tx *gorm.DB, m *model.MovimentacaoCaixa) error {
	if m.CaixaDestinoID != nil {
		if err := tx.Model(&model.Caixa{}).Where("id = ?", *m.CaixaDestinoID).
			Update("saldo_atual", gorm.Expr("saldo_atual + ?", m.Valor)).Error; err != nil {
			return err
		}
	}
	if m.CaixaOrigemID != nil {
		if err := tx.Model(&model.Caixa{}).Where("id = ?", *m.CaixaOrigemID).
			Update("saldo_atual", gorm.Expr("saldo_atual - ?", m.Valor)).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *caixaRepo) FindMovimentacaoPorVenda(ctx context.Context, vendaID string) (*model.MovimentacaoCaixa, error) {
	var m model.MovimentacaoCaixa
	err := r.db.WithContext(ctx).
		Where("tipo = ? AND venda_id = ?", model.MovVenda, vendaID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *caixaRepo) ListMovimentacoes(ctx context.Context, caixaID uuid.UUID, inicio, fim time.Time) ([]model.MovimentacaoCaixa, error) {
	var movs []model.MovimentacaoCaixa
	err := r.db.WithContext(ctx).
		Where("(caixa_origem_id = ? OR caixa_destino_id = ?)", caixaID, caixaID).
		Where("data_movimentacao >= ? AND data_movimentacao < ?", inicio, fim).
		Order("data_movimentacao ASC").
		Find(&movs).Error
	return movs, err
}

func (r *caixaRepo) SomaMovimentacoesDia(ctx context.Context, caixaID uuid.UUID, inicio, fim time.Time, apenasManuais bool) (decimal.Decimal, error) {
	var raw *string
	q := r.db.WithContext(ctx).Model(&model.MovimentacaoCaixa{}).
		Select("SUM(CASE WHEN caixa_destino_id = ? THEN valor ELSE -valor END)", caixaID).
		Where("(caixa_origem_id = ? OR caixa_destino_id = ?)", caixaID, caixaID).
		Where("data_movimentacao >= ? AND data_movimentacao < ?", inicio, fim)
	if apenasManuais {
		q = q.Where("tipo <> ?", model.MovVenda)
	}
	if err := q.Scan(&raw).Error; err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}
