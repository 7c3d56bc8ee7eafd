package service

import (
	"context"
	"strings"
	"time"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/dto"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/repository"

	"github.com/rs/zerolog/log"
)

type AlertaService interface {
	// DataReferencia is the business day whose closing is being audited:
	// yesterday, walking further back over Sundays (the store is closed on
	// Sundays, so no closing is ever expected for one).
	DataReferencia(hoje time.Time) time.Time
	CaixasSemFechamento(ctx context.Context, dataReferencia time.Time) ([]string, error)
	// VerificarFechamentos builds the alert payload for the logged-in user.
	// Presentation is the client's call: operators get a blocking dialog,
	// administrators a dismissible banner, so the response carries the role.
	VerificarFechamentos(ctx context.Context, papel string) (*dto.AlertaFechamentosResponse, error)
	// Dispensar records that the store did not open on the reference day, so
	// the missing closings are expected. Keyed by date; survives restarts.
	Dispensar(ctx context.Context, dataReferencia time.Time) error
	// Auditar is the morning job: mails the administrators when closings are
	// missing and the day was not dismissed.
	Auditar(ctx context.Context) error
}

type alertaService struct {
	caixaRepo      repository.CaixaRepository
	fechamentoRepo repository.FechamentoRepository
	flags          FlagStore
	dispatcher     Dispatcher
	loc            *time.Location
}

func NewAlertaService(
	caixaRepo repository.CaixaRepository,
	fechamentoRepo repository.FechamentoRepository,
	flags FlagStore,
	dispatcher Dispatcher,
	loc *time.Location,
) AlertaService {
	return &alertaService{
		caixaRepo:      caixaRepo,
		fechamentoRepo: fechamentoRepo,
		flags:          flags,
		dispatcher:     dispatcher,
		loc:            loc,
	}
}

func (s *alertaService) DataReferencia(hoje time.Time) time.Time {
	d := meiaNoite(hoje, s.loc).AddDate(0, 0, -1)
	for d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

func (s *alertaService) CaixasSemFechamento(ctx context.Context, dataReferencia time.Time) ([]string, error) {
	caixas, err := s.caixaRepo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	fechamentos, err := s.fechamentoRepo.ListByDia(ctx, dataReferencia)
	if err != nil {
		return nil, err
	}

	fechados := make(map[string]bool, len(fechamentos))
	for _, f := range fechamentos {
		fechados[f.CaixaID.String()] = true
	}

	faltantes := []string{}
	for _, c := range caixas {
		if !fechados[c.ID.String()] {
			faltantes = append(faltantes, c.Nome)
		}
	}
	return faltantes, nil
}

func (s *alertaService) VerificarFechamentos(ctx context.Context, papel string) (*dto.AlertaFechamentosResponse, error) {
	ref := s.DataReferencia(time.Now().In(s.loc))
	faltantes, err := s.CaixasSemFechamento(ctx, ref)
	if err != nil {
		return nil, err
	}

	dispensado := false
	if s.flags != nil {
		dispensado, err = s.flags.Marcada(ctx, chaveDispensa(ref))
		if err != nil {
			// Flag loss downgrades to a repeat prompt, nothing worse.
			log.Error().Err(err).Msg("falha ao consultar a dispensa do alerta")
			dispensado = false
		}
	}

	return &dto.AlertaFechamentosResponse{
		DataReferencia: ref.Format("2006-01-02"),
		Caixas:         faltantes,
		Dispensado:     dispensado,
		Papel:          papel,
	}, nil
}

func (s *alertaService) Dispensar(ctx context.Context, dataReferencia time.Time) error {
	if s.flags == nil {
		return nil
	}
	return s.flags.Marcar(ctx, chaveDispensa(meiaNoite(dataReferencia, s.loc)))
}

func (s *alertaService) Auditar(ctx context.Context) error {
	ref := s.DataReferencia(time.Now().In(s.loc))
	faltantes, err := s.CaixasSemFechamento(ctx, ref)
	if err != nil {
		return err
	}
	if len(faltantes) == 0 {
		return nil
	}
	if s.flags != nil {
		if dispensado, err := s.flags.Marcada(ctx, chaveDispensa(ref)); err == nil && dispensado {
			return nil
		}
	}

	log.Warn().
		Str("data_referencia", ref.Format("2006-01-02")).
		Strs("caixas", faltantes).
		Msg("caixas sem fechamento no dia de referência")

	if s.dispatcher == nil {
		return nil
	}
	return s.dispatcher.EnqueueEmail(ctx, map[string]string{
		"tipo":   "alerta_fechamentos",
		"data":   ref.Format("2006-01-02"),
		"caixas": strings.Join(faltantes, ", "),
	})
}

func chaveDispensa(dataReferencia time.Time) string {
	return "alerta:dispensado:" + dataReferencia.Format("2006-01-02")
}
