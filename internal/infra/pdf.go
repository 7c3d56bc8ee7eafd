package infra

// pdf.go — closing-report generation using go-pdf/fpdf.
// The report is attached to the approval-request email sent when a
// fechamento lands in pendente_aprovacao, so the manager can review the
// numbers without opening the back office.

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/model"

	"github.com/go-pdf/fpdf"
)

// GerarRelatorioFechamento writes an A5 summary of one fechamento to
// storagePath and returns the absolute path of the generated file.
func GerarRelatorioFechamento(f *model.FechamentoCaixa, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("fechamento_%s.pdf", f.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Cresci e Perdi", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Fechamento de Caixa", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(3)

	// ── Identification ────────────────────────────────────────────────────────
	nomeCaixa := f.CaixaID.String()
	if f.Caixa != nil {
		nomeCaixa = f.Caixa.Nome
	}
	labelW := contentW * 0.45
	valueW := contentW - labelW

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(labelW, 6, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(valueW, 6, value, "", 1, "R", false, 0, "")
	}

	row("Caixa:", nomeCaixa)
	row("Dia:", f.DataFechamento.Format("02/01/2006"))
	row("Status:", f.Status)
	pdf.Ln(3)

	// ── Values ────────────────────────────────────────────────────────────────
	row("Saldo do sistema:", "R$ "+f.SaldoSistema.StringFixed(2))
	row("Valor contado:", "R$ "+f.ValorContado.StringFixed(2))

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(labelW, 8, "Diferença:", "", 0, "L", false, 0, "")
	pdf.CellFormat(valueW, 8, "R$ "+f.Diferenca.StringFixed(2), "", 1, "R", false, 0, "")

	if f.Justificativa != nil && *f.Justificativa != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 5, "Justificativa:", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(contentW, 5, *f.Justificativa, "", "L", false)
	}

	// ── Payment summary ───────────────────────────────────────────────────────
	if len(f.ResumoPagamentos) > 0 {
		var resumo map[string]string
		if err := json.Unmarshal(f.ResumoPagamentos, &resumo); err == nil && len(resumo) > 0 {
			pdf.Ln(3)
			pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "B", 9)
			pdf.CellFormat(contentW, 5, "Totais do dia por método", "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 8)
			for metodo, total := range resumo {
				pdf.CellFormat(labelW, 5, metodo, "", 0, "L", false, 0, "")
				pdf.CellFormat(valueW, 5, "R$ "+total, "", 1, "R", false, 0, "")
			}
		}
	}

	// ── Footer ────────────────────────────────────────────────────────────────
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Gerado em "+f.CreatedAt.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
