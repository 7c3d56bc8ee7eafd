package repository

import (
	"context"
	"errors"
	"time"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FechamentoRepository interface {
	Create(ctx context.Context, f *model.FechamentoCaixa) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FechamentoCaixa, error)
	// FindByCaixaEDia returns the closing whose date falls inside the 24h
	// window starting at dia, or nil when none exists.
	FindByCaixaEDia(ctx context.Context, caixaID uuid.UUID, dia time.Time) (*model.FechamentoCaixa, error)
	// FindUltimoAnterior returns the most recent closing strictly before
	// antesDe, or nil when the register has never been closed.
	FindUltimoAnterior(ctx context.Context, caixaID uuid.UUID, antesDe time.Time) (*model.FechamentoCaixa, error)
	ListByDia(ctx context.Context, dia time.Time) ([]model.FechamentoCaixa, error)
	ListPendentes(ctx context.Context) ([]model.FechamentoCaixa, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type fechamentoRepo struct{ db *gorm.DB }

func NewFechamentoRepository(db *gorm.DB) FechamentoRepository { return &fechamentoRepo{db: db} }

func (r *fechamentoRepo) Create(ctx context.Context, f *model.FechamentoCaixa) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *fechamentoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.FechamentoCaixa, error) {
	var f model.FechamentoCaixa
	err := r.db.WithContext(ctx).Preload("Caixa").First(&f, id).Error
	return &f, err
}

func (r *fechamentoRepo) FindByCaixaEDia(ctx context.Context, caixaID uuid.UUID, dia time.Time) (*model.FechamentoCaixa, error) {
	var f model.FechamentoCaixa
	err := r.db.WithContext(ctx).
		Where("caixa_id = ?", caixaID).
		Where("data_fechamento >= ? AND data_fechamento < ?", dia, dia.Add(24*time.Hour)).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fechamentoRepo) FindUltimoAnterior(ctx context.Context, caixaID uuid.UUID, antesDe time.Time) (*model.FechamentoCaixa, error) {
	var f model.FechamentoCaixa
	err := r.db.WithContext(ctx).
		Where("caixa_id = ?", caixaID).
		Where("data_fechamento < ?", antesDe).
		Order("data_fechamento DESC").
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fechamentoRepo) ListByDia(ctx context.Context, dia time.Time) ([]model.FechamentoCaixa, error) {
	var fs []model.FechamentoCaixa
	err := r.db.WithContext(ctx).
		Where("data_fechamento >= ? AND data_fechamento < ?", dia, dia.Add(24*time.Hour)).
		Preload("Caixa").
		Find(&fs).Error
	return fs, err
}

func (r *fechamentoRepo) ListPendentes(ctx context.Context) ([]model.FechamentoCaixa, error) {
	var fs []model.FechamentoCaixa
	err := r.db.WithContext(ctx).
		Where("status = ?", model.FechamentoPendente).
		Preload("Caixa").
		Order("data_fechamento ASC").
		Find(&fs).Error
	return fs, err
}

func (r *fechamentoRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.FechamentoCaixa{}).
		Where("id = ?", id).
		Update("status", status).Error
}
