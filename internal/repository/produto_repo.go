package repository

import (
	"context"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProdutoRepository interface {
	Create(ctx context.Context, p *model.Produto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error)
	FindByCodigo(ctx context.Context, codigo string) (*model.Produto, error)
	List(ctx context.Context, categoria string, apenasAtivos bool) ([]model.Produto, error)
	Update(ctx context.Context, p *model.Produto) error
	Desativar(ctx context.Context, id uuid.UUID) error

	// BaixarEstoqueTx decrements stock inside an ongoing sale
	// transaction. Fails when there are not enough units.
	BaixarEstoqueTx(tx *gorm.DB, produtoID uuid.UUID, quantidade int) error
	ReporEstoqueTx(tx *gorm.DB, produtoID uuid.UUID, quantidade int) error
}

type produtoRepo struct{ db *gorm.DB }

func NewProdutoRepository(db *gorm.DB) ProdutoRepository { return &produtoRepo{db: db} }

func (r *produtoRepo) Create(ctx context.Context, p *model.Produto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *produtoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error) {
	var p model.Produto
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *produtoRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Produto, error) {
	var p model.Produto
	err := r.db.WithContext(ctx).Where("codigo = ?", codigo).First(&p).Error
	return &p, err
}

func (r *produtoRepo) List(ctx context.Context, categoria string, apenasAtivos bool) ([]model.Produto, error) {
	var ps []model.Produto
	q := r.db.WithContext(ctx).Order("nome ASC")
	if categoria != "" {
		q = q.Where("categoria = ?", categoria)
	}
	if apenasAtivos {
		q = q.Where("ativo = true")
	}
	err := q.Find(&ps).Error
	return ps, err
}

func (r *produtoRepo) Update(ctx context.Context, p *model.Produto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *produtoRepo) Desativar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Produto{}).Where("id = ?", id).
		Update("ativo", false).Error
}

func (r *produtoRepo) BaixarEstoqueTx(tx *gorm.DB, produtoID uuid.UUID, quantidade int) error {
	res := tx.Model(&model.Produto{}).
		Where("id = ? AND quantidade >= ?", produtoID, quantidade).
		Update("quantidade", gorm.Expr("quantidade - ?", quantidade))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *produtoRepo) ReporEstoqueTx(tx *gorm.DB, produtoID uuid.UUID, quantidade int) error {
	return tx.Model(&model.Produto{}).Where("id = ?", produtoID).
		Update("quantidade", gorm.Expr("quantidade + ?", quantidade)).Error
}
