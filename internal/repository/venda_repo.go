package repository

import (
	"context"
	"time"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/dto"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VendaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, v *model.Venda) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venda, error)
	NextTicketNumber(ctx context.Context, tx *gorm.DB) (int64, error)
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error
	List(ctx context.Context, filter dto.VendaFilter) ([]model.Venda, int64, error)
	// ListPeriodo returns completed sales inside [inicio, fim) ordered by
	// business timestamp ascending — the reconciliation job's scan order.
	ListPeriodo(ctx context.Context, inicio, fim time.Time) ([]model.Venda, error)
	// TotalDinheiroPorCaixa sums the cash legs of completed sales attributed
	// to a register inside [inicio, fim). The method match is
	// case/whitespace-insensitive to tolerate legacy free-text values.
	TotalDinheiroPorCaixa(ctx context.Context, caixaNome string, inicio, fim time.Time) (decimal.Decimal, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type vendaRepo struct{ db *gorm.DB }

func NewVendaRepository(db *gorm.DB) VendaRepository { return &vendaRepo{db: db} }

func (r *vendaRepo) DB() *gorm.DB { return r.db }

func (r *vendaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venda) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *vendaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venda, error) {
	var v model.Venda
	err := r.db.WithContext(ctx).Preload("Itens.Produto").Preload("Pagamentos").First(&v, id).Error
	return &v, err
}

func (r *vendaRepo) NextTicketNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	// Uses a PostgreSQL sequence for atomic ticket number generation
	var num int64
	err := tx.WithContext(ctx).Raw("SELECT nextval('vendas_numero_ticket_seq')").Scan(&num).Error
	return num, err
}

func (r *vendaRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.Model(&model.Venda{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *vendaRepo) List(ctx context.Context, filter dto.VendaFilter) ([]model.Venda, int64, error) {
	var vendas []model.Venda
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Venda{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Data != "" {
		q = q.Where("DATE(data_venda) = ?", filter.Data)
	} else {
		q = q.Where("DATE(data_venda) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Itens.Produto").Preload("Pagamentos").
		Order("data_venda DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&vendas).Error

	return vendas, total, err
}

func (r *vendaRepo) ListPeriodo(ctx context.Context, inicio, fim time.Time) ([]model.Venda, error) {
	var vendas []model.Venda
	err := r.db.WithContext(ctx).
		Where("estado = ?", model.VendaConcluida).
		Where("data_venda >= ? AND data_venda < ?", inicio, fim).
		Preload("Pagamentos").
		Order("data_venda ASC").
		Find(&vendas).Error
	return vendas, err
}

func (r *vendaRepo) TotalDinheiroPorCaixa(ctx context.Context, caixaNome string, inicio, fim time.Time) (decimal.Decimal, error) {
	var raw *string
	err := r.db.WithContext(ctx).Model(&model.VendaPagamento{}).
		Select("SUM(venda_pagamentos.valor)").
		Joins("JOIN vendas ON vendas.id = venda_pagamentos.venda_id").
		Where("vendas.estado = ?", model.VendaConcluida).
		Where("vendas.caixa_nome = ?", caixaNome).
		Where("vendas.data_venda >= ? AND vendas.data_venda < ?", inicio, fim).
		Where("LOWER(BTRIM(venda_pagamentos.metodo)) = ?", model.PagamentoDinheiro).
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}
