// Package excel genera los reportes .xlsx del kardex (historial y conciliación).
package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Obras-api/internal/application/dto"
)

const timeLayout = "02/01/2006 15:04"

// WriteLedger escribe el historial del kardex en una hoja "Kardex".
func WriteLedger(w io.Writer, items []dto.LedgerEntryResponse) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "Kardex"
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return fmt.Errorf("excel: renombrar hoja: %w", err)
	}

	header := []interface{}{
		"Fecha", "Ubicación", "Tipo ubicación", "Categoría", "Producto", "Tipo", "Dirección",
		"Saldo previo", "Cantidad", "Saldo", "Contraparte", "Retirado por", "Usuario", "Observaciones", "Transacción",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("excel: encabezado: %w", err)
	}

	for i, e := range items {
		row := []interface{}{
			e.Time.Format(timeLayout),
			e.Location.ID,
			string(e.Location.Kind),
			e.CategoryName,
			e.ProductName,
			e.Type,
			string(e.Direction),
			e.PreviousQuantity.InexactFloat64(),
			e.Quantity.InexactFloat64(),
			e.BalanceQuantity.InexactFloat64(),
			e.CounterpartName,
			e.TakenBy,
			e.UserID,
			e.Remarks,
			e.TransactionID,
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	if err := styleHeader(f, sheet, len(header)); err != nil {
		return err
	}
	return write(f, w)
}

// WriteReconciliation escribe los hallazgos y el resumen por producto en dos hojas.
func WriteReconciliation(w io.Writer, rep *dto.ReconciliationReport) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	findings := "Hallazgos"
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), findings); err != nil {
		return fmt.Errorf("excel: renombrar hoja: %w", err)
	}
	header := []interface{}{"Corrida", "Chequeo", "Tipo ubicación", "Ubicación", "Producto", "Esperado", "Actual", "Detalle"}
	if err := f.SetSheetRow(findings, "A1", &header); err != nil {
		return fmt.Errorf("excel: encabezado: %w", err)
	}
	for i, fd := range rep.Findings {
		row := []interface{}{
			rep.RunID, fd.CheckType, string(fd.Location.Kind), fd.Location.ID, fd.ProductID,
			fd.Expected.InexactFloat64(), fd.Actual.InexactFloat64(), fd.Details,
		}
		if err := setRow(f, findings, i+2, row); err != nil {
			return err
		}
	}
	if err := styleHeader(f, findings, len(header)); err != nil {
		return err
	}

	products := "Productos"
	if _, err := f.NewSheet(products); err != nil {
		return fmt.Errorf("excel: nueva hoja: %w", err)
	}
	header = []interface{}{"Producto", "Suma de saldos", "Créditos netos", "Consumido en obra", "Cuadra"}
	if err := f.SetSheetRow(products, "A1", &header); err != nil {
		return fmt.Errorf("excel: encabezado: %w", err)
	}
	for i, p := range rep.Products {
		ok := "SI"
		if !p.Balanced {
			ok = "NO"
		}
		row := []interface{}{
			p.ProductID, p.TotalBalance.InexactFloat64(), p.NetExternal.InexactFloat64(), p.Consumed.InexactFloat64(), ok,
		}
		if err := setRow(f, products, i+2, row); err != nil {
			return err
		}
	}
	if err := styleHeader(f, products, len(header)); err != nil {
		return err
	}
	return write(f, w)
}

func setRow(f *excelize.File, sheet string, n int, row []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return fmt.Errorf("excel: celda: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("excel: fila %d: %w", n, err)
	}
	return nil
}

// styleHeader pone en negrita la primera fila y la deja fija al desplazarse.
func styleHeader(f *excelize.File, sheet string, cols int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("excel: estilo: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return fmt.Errorf("excel: celda: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("excel: estilo encabezado: %w", err)
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func write(f *excelize.File, w io.Writer) error {
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("excel: escribir: %w", err)
	}
	return nil
}
