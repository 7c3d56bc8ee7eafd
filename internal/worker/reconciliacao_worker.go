package worker

// reconciliacao_worker.go
// Processes ledger-reconciliation jobs from QueueReconciliacao. Jobs carry
// the business day to sweep; the nightly scheduler and the manual trigger
// endpoint both enqueue through the same path.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/service"

	"github.com/rs/zerolog/log"
)

// ReconciliacaoJobPayload names the business day to sweep (YYYY-MM-DD in
// the store timezone). Empty dia means "today".
type ReconciliacaoJobPayload struct {
	Dia string `json:"dia,omitempty"`
}

// ReconciliacaoWorker runs the idempotent sales-vs-ledger sweep.
type ReconciliacaoWorker struct {
	svc service.ReconciliacaoService
	loc *time.Location
}

func NewReconciliacaoWorker(svc service.ReconciliacaoService, loc *time.Location) *ReconciliacaoWorker {
	return &ReconciliacaoWorker{svc: svc, loc: loc}
}

func (w *ReconciliacaoWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReconciliacaoJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("reconciliacao_worker: invalid payload")
		return
	}

	dia := time.Now().In(w.loc)
	if payload.Dia != "" {
		parsed, err := time.ParseInLocation("2006-01-02", payload.Dia, w.loc)
		if err != nil {
			log.Error().Str("dia", payload.Dia).Err(err).
				Msg("reconciliacao_worker: invalid dia")
			return
		}
		dia = parsed
	}

	resultado, err := w.svc.ReconciliarDia(ctx, dia)
	if err != nil {
		log.Error().Err(err).Str("dia", dia.Format("2006-01-02")).
			Msg("reconciliacao_worker: sweep failed")
		return
	}

	evt := log.Info()
	if len(resultado.Erros) > 0 {
		evt = log.Warn()
	}
	evt.Str("dia", dia.Format("2006-01-02")).
		Int("corrigidas", resultado.Corrigidas).
		Int("erros", len(resultado.Erros)).
		Msg("reconciliacao_worker: sweep finished")
}
