package repository

import (
	"context"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	List(ctx context.Context) ([]model.Cliente, error)
	Update(ctx context.Context, c *model.Cliente) error

	CreateAvaliacao(ctx context.Context, a *model.Avaliacao) error
	FindAvaliacaoByID(ctx context.Context, id uuid.UUID) (*model.Avaliacao, error)
	ListAvaliacoes(ctx context.Context, clienteID *uuid.UUID) ([]model.Avaliacao, error)
	// AceitarAvaliacao flips the evaluation to "aceita" and credits the
	// client's store credit in the same transaction.
	AceitarAvaliacao(ctx context.Context, a *model.Avaliacao) error
	UpdateAvaliacaoStatus(ctx context.Context, id uuid.UUID, status string) error

	// DebitarCreditoTx debits store credit inside an ongoing sale
	// transaction. Fails when the balance is insufficient.
	DebitarCreditoTx(tx *gorm.DB, clienteID uuid.UUID, valor decimal.Decimal) error
	// ReporCreditoTx refunds store credit inside a sale cancellation
	// transaction.
	ReporCreditoTx(tx *gorm.DB, clienteID uuid.UUID, valor decimal.Decimal) error
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *clienteRepo) List(ctx context.Context) ([]model.Cliente, error) {
	var cs []model.Cliente
	err := r.db.WithContext(ctx).Where("ativo = true").Order("nome ASC").Find(&cs).Error
	return cs, err
}

func (r *clienteRepo) Update(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clienteRepo) CreateAvaliacao(ctx context.Context, a *model.Avaliacao) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *clienteRepo) FindAvaliacaoByID(ctx context.Context, id uuid.UUID) (*model.Avaliacao, error) {
	var a model.Avaliacao
	err := r.db.WithContext(ctx).Preload("Cliente").First(&a, id).Error
	return &a, err
}

func (r *clienteRepo) ListAvaliacoes(ctx context.Context, clienteID *uuid.UUID) ([]model.Avaliacao, error) {
	var as []model.Avaliacao
	q := r.db.WithContext(ctx).Preload("Cliente").Order("created_at DESC")
	if clienteID != nil {
		q = q.Where("cliente_id = ?", *clienteID)
	}
	err := q.Find(&as).Error
	return as, err
}

func (r *clienteRepo) AceitarAvaliacao(ctx context.Context, a *model.Avaliacao) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Avaliacao{}).Where("id = ?", a.ID).
			Update("status", model.AvaliacaoAceita).Error; err != nil {
			return err
		}
		return tx.Model(&model.Cliente{}).Where("id = ?", a.ClienteID).
			Update("saldo_credito", gorm.Expr("saldo_credito + ?", a.ValorOferta)).Error
	})
}

func (r *clienteRepo) UpdateAvaliacaoStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.Avaliacao{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *clienteRepo) DebitarCreditoTx(tx *gorm.DB, clienteID uuid.UUID, valor decimal.Decimal) error {
	res := tx.Model(&model.Cliente{}).
		Where("id = ? AND saldo_credito >= ?", clienteID, valor).
		Update("saldo_credito", gorm.Expr("saldo_credito - ?", valor))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *clienteRepo) ReporCreditoTx(tx *gorm.DB, clienteID uuid.UUID, valor decimal.Decimal) error {
	return tx.Model(&model.Cliente{}).Where("id = ?", clienteID).
		Update("saldo_credito", gorm.Expr("saldo_credito + ?", valor)).Error
}
