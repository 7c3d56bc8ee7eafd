package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/dto"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/model"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/repository"

	"github.com/google/uuid"
)

type ProdutoService interface {
	Criar(ctx context.Context, req dto.CriarProdutoRequest) (*dto.ProdutoResponse, error)
	Obter(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error)
	Listar(ctx context.Context, categoria string, apenasAtivos bool) ([]dto.ProdutoResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarProdutoRequest) (*dto.ProdutoResponse, error)
	Desativar(ctx context.Context, id uuid.UUID) error
}

type produtoService struct {
	repo repository.ProdutoRepository
}

func NewProdutoService(repo repository.ProdutoRepository) ProdutoService {
	return &produtoService{repo: repo}
}

func (s *produtoService) Criar(ctx context.Context, req dto.CriarProdutoRequest) (*dto.ProdutoResponse, error) {
	if existing, err := s.repo.FindByCodigo(ctx, req.Codigo); err == nil && existing != nil {
		return nil, fmt.Errorf("já existe um produto com o código %q", req.Codigo)
	}
	produto := &model.Produto{
		Codigo:     req.Codigo,
		Nome:       req.Nome,
		Categoria:  req.Categoria,
		Preco:      req.Preco.Round(2),
		Quantidade: req.Quantidade,
		Ativo:      true,
	}
	if err := s.repo.Create(ctx, produto); err != nil {
		return nil, err
	}
	return produtoToResponse(produto), nil
}

func (s *produtoService) Obter(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error) {
	produto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("produto não encontrado")
	}
	return produtoToResponse(produto), nil
}

func (s *produtoService) Listar(ctx context.Context, categoria string, apenasAtivos bool) ([]dto.ProdutoResponse, error) {
	produtos, err := s.repo.List(ctx, categoria, apenasAtivos)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProdutoResponse, 0, len(produtos))
	for i := range produtos {
		out = append(out, *produtoToResponse(&produtos[i]))
	}
	return out, nil
}

func (s *produtoService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarProdutoRequest) (*dto.ProdutoResponse, error) {
	produto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("produto não encontrado")
	}
	if req.Nome != "" {
		produto.Nome = req.Nome
	}
	if req.Categoria != "" {
		produto.Categoria = req.Categoria
	}
	if req.Preco != nil {
		if req.Preco.IsNegative() {
			return nil, errors.New("o preço não pode ser negativo")
		}
		produto.Preco = req.Preco.Round(2)
	}
	if req.Quantidade != nil {
		produto.Quantidade = *req.Quantidade
	}
	if err := s.repo.Update(ctx, produto); err != nil {
		return nil, err
	}
	return produtoToResponse(produto), nil
}

func (s *produtoService) Desativar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return errors.New("produto não encontrado")
	}
	return s.repo.Desativar(ctx, id)
}

func produtoToResponse(p *model.Produto) *dto.ProdutoResponse {
	return &dto.ProdutoResponse{
		ID:         p.ID.String(),
		Codigo:     p.Codigo,
		Nome:       p.Nome,
		Categoria:  p.Categoria,
		Preco:      p.Preco,
		Quantidade: p.Quantidade,
		Ativo:      p.Ativo,
	}
}
