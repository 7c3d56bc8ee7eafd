package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/dto"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/model"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type ClienteService interface {
	Criar(ctx context.Context, req dto.CriarClienteRequest) (*dto.ClienteResponse, error)
	Obter(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Listar(ctx context.Context) ([]dto.ClienteResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarClienteRequest) (*dto.ClienteResponse, error)

	// CriarAvaliacao records the intake offer for goods a client brought in.
	CriarAvaliacao(ctx context.Context, avaliadorID uuid.UUID, req dto.CriarAvaliacaoRequest) (*dto.AvaliacaoResponse, error)
	ListarAvaliacoes(ctx context.Context, clienteID *uuid.UUID) ([]dto.AvaliacaoResponse, error)
	// AceitarAvaliacao credits the offer to the client's store credit.
	AceitarAvaliacao(ctx context.Context, id uuid.UUID) (*dto.AvaliacaoResponse, error)
	RecusarAvaliacao(ctx context.Context, id uuid.UUID) (*dto.AvaliacaoResponse, error)
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Criar(ctx context.Context, req dto.CriarClienteRequest) (*dto.ClienteResponse, error) {
	cliente := &model.Cliente{
		Nome:     req.Nome,
		Telefone: req.Telefone,
		Email:    req.Email,
		Ativo:    true,
	}
	if err := s.repo.Create(ctx, cliente); err != nil {
		return nil, err
	}
	return clienteToResponse(cliente), nil
}

func (s *clienteService) Obter(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	cliente, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cliente não encontrado")
	}
	return clienteToResponse(cliente), nil
}

func (s *clienteService) Listar(ctx context.Context) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		out = append(out, *clienteToResponse(&clientes[i]))
	}
	return out, nil
}

func (s *clienteService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarClienteRequest) (*dto.ClienteResponse, error) {
	cliente, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cliente não encontrado")
	}
	if req.Nome != "" {
		cliente.Nome = req.Nome
	}
	if req.Telefone != nil {
		cliente.Telefone = req.Telefone
	}
	if req.Email != nil {
		cliente.Email = req.Email
	}
	if err := s.repo.Update(ctx, cliente); err != nil {
		return nil, err
	}
	return clienteToResponse(cliente), nil
}

// ── Avaliações ────────────────────────────────────────────────────────────────

func (s *clienteService) CriarAvaliacao(ctx context.Context, avaliadorID uuid.UUID, req dto.CriarAvaliacaoRequest) (*dto.AvaliacaoResponse, error) {
	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return nil, fmt.Errorf("cliente_id inválido: %w", err)
	}
	cliente, err := s.repo.FindByID(ctx, clienteID)
	if err != nil {
		return nil, errors.New("cliente não encontrado")
	}

	avaliacao := &model.Avaliacao{
		ClienteID:     clienteID,
		Descricao:     req.Descricao,
		QtdItens:      req.QtdItens,
		ValorOferta:   req.ValorOferta.Round(2),
		Status:        model.AvaliacaoAguardando,
		AvaliadoPorID: avaliadorID,
	}
	if err := s.repo.CreateAvaliacao(ctx, avaliacao); err != nil {
		return nil, err
	}
	avaliacao.Cliente = cliente
	return avaliacaoToResponse(avaliacao), nil
}

func (s *clienteService) ListarAvaliacoes(ctx context.Context, clienteID *uuid.UUID) ([]dto.AvaliacaoResponse, error) {
	avaliacoes, err := s.repo.ListAvaliacoes(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AvaliacaoResponse, 0, len(avaliacoes))
	for i := range avaliacoes {
		out = append(out, *avaliacaoToResponse(&avaliacoes[i]))
	}
	return out, nil
}

func (s *clienteService) AceitarAvaliacao(ctx context.Context, id uuid.UUID) (*dto.AvaliacaoResponse, error) {
	avaliacao, err := s.repo.FindAvaliacaoByID(ctx, id)
	if err != nil {
		return nil, errors.New("avaliação não encontrada")
	}
	if avaliacao.Status != model.AvaliacaoAguardando {
		return nil, fmt.Errorf("avaliação com status %q não pode ser aceita", avaliacao.Status)
	}
	if err := s.repo.AceitarAvaliacao(ctx, avaliacao); err != nil {
		return nil, err
	}
	avaliacao.Status = model.AvaliacaoAceita

	log.Info().
		Str("avaliacao_id", id.String()).
		Str("cliente_id", avaliacao.ClienteID.String()).
		Str("valor", avaliacao.ValorOferta.StringFixed(2)).
		Msg("avaliação aceita, crédito de loja concedido")
	return avaliacaoToResponse(avaliacao), nil
}

func (s *clienteService) RecusarAvaliacao(ctx context.Context, id uuid.UUID) (*dto.AvaliacaoResponse, error) {
	avaliacao, err := s.repo.FindAvaliacaoByID(ctx, id)
	if err != nil {
		return nil, errors.New("avaliação não encontrada")
	}
	if avaliacao.Status != model.AvaliacaoAguardando {
		return nil, fmt.Errorf("avaliação com status %q não pode ser recusada", avaliacao.Status)
	}
	if err := s.repo.UpdateAvaliacaoStatus(ctx, id, model.AvaliacaoRecusada); err != nil {
		return nil, err
	}
	avaliacao.Status = model.AvaliacaoRecusada
	return avaliacaoToResponse(avaliacao), nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	return &dto.ClienteResponse{
		ID:           c.ID.String(),
		Nome:         c.Nome,
		Telefone:     c.Telefone,
		Email:        c.Email,
		SaldoCredito: c.SaldoCredito,
		Ativo:        c.Ativo,
	}
}

func avaliacaoToResponse(a *model.Avaliacao) *dto.AvaliacaoResponse {
	resp := &dto.AvaliacaoResponse{
		ID:          a.ID.String(),
		ClienteID:   a.ClienteID.String(),
		Descricao:   a.Descricao,
		QtdItens:    a.QtdItens,
		ValorOferta: a.ValorOferta,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
	if a.Cliente != nil {
		resp.Cliente = a.Cliente.Nome
	}
	return resp
}
