package infra

// pdf.go — Ficha de orden en PDF usando go-pdf/fpdf.
// Hoja A4 con el encabezado de la orden (secuencia, área, cliente, fechas),
// la especificación de tinta/retiro y la tabla de archivos de producción.
// La ficha acompaña a la orden por las áreas del taller.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"printflow/internal/model"
)

// GenerateFichaPDF writes the work-sheet PDF for an order (with its Archivos
// and Servicios preloaded) and returns the absolute path to the file.
func GenerateFichaPDF(orden *model.Orden, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("ficha_%s.pdf", orden.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// ── Encabezado ───────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, "Ficha de Orden", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, orden.Secuencia, "", 1, "L", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 10)
	fila := func(etiqueta, valor string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, etiqueta, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, valor, "", 1, "L", false, 0, "")
	}

	fila("Área:", orden.AreaID)
	fila("Cliente:", orden.Cliente)
	fila("Trabajo:", orden.Trabajo)
	fila("Prioridad:", orden.Prioridad)
	fila("Material:", orden.Material)
	fila("Variante:", orden.Variante)
	if orden.Tinta != nil {
		fila("Tinta:", *orden.Tinta)
	}
	if orden.Retiro != nil {
		fila("Retiro:", *orden.Retiro)
	}
	if orden.Notas != "" {
		fila("Notas:", orden.Notas)
	}
	fila("Ingreso:", orden.FechaIngreso.Format("02/01/2006"))
	fila("Entrega estimada:", orden.FechaEntrega.Format("02/01/2006"))
	fila("Magnitud:", orden.Magnitud)
	pdf.Ln(4)

	// ── Archivos de producción ───────────────────────────────────────────────
	if len(orden.Archivos) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, fmt.Sprintf("Archivos (%d)", len(orden.Archivos)), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(95, 6, "Nombre", "B", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, "Copias", "B", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, "Metros", "B", 0, "R", false, 0, "")
		pdf.CellFormat(0, 6, "Estado", "B", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 9)
		for _, a := range orden.Archivos {
			medida := fmt.Sprintf("%.2f", a.Metros)
			if !a.MedidaConfirmada {
				medida += " (est.)"
			}
			pdf.CellFormat(95, 6, a.Nombre, "", 0, "L", false, 0, "")
			pdf.CellFormat(20, 6, fmt.Sprintf("%d", a.CantCopias), "", 0, "R", false, 0, "")
			pdf.CellFormat(25, 6, medida, "", 0, "R", false, 0, "")
			pdf.CellFormat(0, 6, a.Estado, "", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	// ── Servicios extra ──────────────────────────────────────────────────────
	if len(orden.Servicios) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, fmt.Sprintf("Servicios (%d)", len(orden.Servicios)), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 9)
		for _, s := range orden.Servicios {
			pdf.CellFormat(120, 6, s.Descripcion, "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 6, s.Cantidad.String(), "", 1, "R", false, 0, "")
		}
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write %s: %w", filePath, err)
	}
	return filePath, nil
}
