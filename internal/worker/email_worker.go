package worker

// email_worker.go
// Processes notification jobs from QueueEmail. Two job kinds flow through
// here: the approval request sent when a fechamento lands in
// pendente_aprovacao (with the PDF report attached) and the morning alert
// listing registers whose previous business day was never closed.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/infra"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// emailJobPayload covers both job kinds; unused fields stay empty.
type emailJobPayload struct {
	Tipo         string `json:"tipo"`
	FechamentoID string `json:"fechamento_id,omitempty"`
	Data         string `json:"data,omitempty"`
	Caixas       string `json:"caixas,omitempty"`
}

// EmailWorker processes notification jobs from QueueEmail.
type EmailWorker struct {
	mailer         *infra.Mailer
	fechamentoRepo repository.FechamentoRepository
	rdb            *redis.Client
	pdfStoragePath string
	emailAlertas   string
}

func NewEmailWorker(
	mailer *infra.Mailer,
	fechamentoRepo repository.FechamentoRepository,
	rdb *redis.Client,
	pdfStoragePath string,
	emailAlertas string,
) *EmailWorker {
	return &EmailWorker{
		mailer:         mailer,
		fechamentoRepo: fechamentoRepo,
		rdb:            rdb,
		pdfStoragePath: pdfStoragePath,
		emailAlertas:   emailAlertas,
	}
}

// Process routes one job by tipo. Failed sends go to the DLQ for manual
// inspection instead of being retried forever.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload emailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if w.emailAlertas == "" {
		log.Warn().Str("tipo", payload.Tipo).Msg("email_worker: EMAIL_ALERTAS not configured — skipping")
		return
	}

	var err error
	switch payload.Tipo {
	case "fechamento_pendente":
		err = w.enviarFechamentoPendente(ctx, payload)
	case "alerta_fechamentos":
		err = w.enviarAlertaFechamentos(payload)
	default:
		log.Warn().Str("tipo", payload.Tipo).Msg("email_worker: unknown job tipo dropped")
		return
	}

	if err != nil {
		log.Error().Err(err).Str("tipo", payload.Tipo).Msg("email_worker: failed to send email")
		SendToDLQ(ctx, w.rdb, QueueEmail, payload.Tipo, raw, err.Error(), 1)
		return
	}
	log.Info().Str("tipo", payload.Tipo).Msg("email_worker: notification sent")
}

func (w *EmailWorker) enviarFechamentoPendente(ctx context.Context, payload emailJobPayload) error {
	id, err := uuid.Parse(payload.FechamentoID)
	if err != nil {
		return fmt.Errorf("fechamento_id inválido %q: %w", payload.FechamentoID, err)
	}
	fechamento, err := w.fechamentoRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("buscar fechamento %s: %w", id, err)
	}

	// PDF failure is not fatal: the email still carries the numbers.
	pdfPath, err := infra.GerarRelatorioFechamento(fechamento, w.pdfStoragePath)
	if err != nil {
		log.Error().Err(err).Str("fechamento_id", id.String()).
			Msg("email_worker: falha ao gerar PDF do fechamento")
		pdfPath = ""
	}

	nomeCaixa := fechamento.CaixaID.String()
	if fechamento.Caixa != nil {
		nomeCaixa = fechamento.Caixa.Nome
	}
	subject := fmt.Sprintf("Fechamento pendente de aprovação — %s (%s)",
		nomeCaixa, fechamento.DataFechamento.Format("02/01/2006"))
	body := fmt.Sprintf(
		"O fechamento do caixa %q em %s aguarda aprovação.\n\n"+
			"Saldo do sistema: R$ %s\nValor contado: R$ %s\nDiferença: R$ %s\n",
		nomeCaixa,
		fechamento.DataFechamento.Format("02/01/2006"),
		fechamento.SaldoSistema.StringFixed(2),
		fechamento.ValorContado.StringFixed(2),
		fechamento.Diferenca.StringFixed(2),
	)
	if fechamento.Justificativa != nil && *fechamento.Justificativa != "" {
		body += "Justificativa: " + *fechamento.Justificativa + "\n"
	}

	return w.mailer.Enviar(w.emailAlertas, subject, body, pdfPath)
}

func (w *EmailWorker) enviarAlertaFechamentos(payload emailJobPayload) error {
	subject := "Caixas sem fechamento em " + payload.Data
	body := fmt.Sprintf(
		"Os seguintes caixas não registraram fechamento no dia %s:\n\n%s\n\n"+
			"Se a loja não abriu nesse dia, dispense o alerta no sistema.\n",
		payload.Data, payload.Caixas,
	)
	return w.mailer.Enviar(w.emailAlertas, subject, body, "")
}
