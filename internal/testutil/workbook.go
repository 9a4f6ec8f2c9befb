// Package testutil builds in-memory input files for tests.
package testutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// EmissionHeader is the header row of an emission workbook.
var EmissionHeader = []any{
	"PO", "EECC", "Localidad", "MOV_SAP", "Tipo Solicitud", "Codigo Material",
	"Descripcion", "Cantidad", "Codigo Almacen", "ELEMENTO PEP", "IP", "VR",
	"SOLICITUD", "Codigo destino mercancías", "Gestor", "Numero de registro", "ESTADO",
}

// RequestHeader is the header row of a request workbook.
var RequestHeader = []any{
	"SVR", "PO", "IP", "EECC", "MOV_SAP", "POS", "Codigo Material", "Descripcion",
	"Cantidad", "TIPO SOLICITUD REAL", "Tipo Solicitud", "VR", "VD", "Codigo Almacen",
	"ELEMENTO PEP", "Observacion", "Codigo destino mercancías", "ESTADO",
	"FECHA DE ATENCION", "GESTOR", "N°",
}

// EmissionRow builds one emission row.
func EmissionRow(po string, movement any, requestType string, material, quantity, storage any, costElement, ip, ec, status string) []any {
	return []any{
		po, ec, "LIMA", movement, requestType, material,
		"MATERIAL", quantity, storage, costElement, ip, "",
		"S-1", "DESTINO", "GESTOR", 1, status,
	}
}

// RequestRow builds one request row.
func RequestRow(svr, po string, movement any, position any, material, quantity any, requestType string, vr any, storage any, costElement, status string) []any {
	return []any{
		svr, po, "IP-" + svr, "EC-" + svr, movement, position, material, "MATERIAL",
		quantity, requestType, requestType, vr, "", storage,
		costElement, "", "DESTINO", status,
		"", "GESTOR", 1,
	}
}

// Workbook writes header and rows to sheet of a new workbook.
func Workbook(t testing.TB, sheet string, header []any, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() {
		require.NoError(t, f.Close())
	}()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}

	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// FormatCells applies a built-in number format (e.g. 3 for "#,##0") to the
// given cells of sheet and returns the rewritten workbook.
func FormatCells(t testing.TB, data []byte, sheet string, numFmt int, cells ...string) []byte {
	t.Helper()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, f.Close())
	}()

	style, err := f.NewStyle(&excelize.Style{NumFmt: numFmt})
	require.NoError(t, err)
	for _, cell := range cells {
		require.NoError(t, f.SetCellStyle(sheet, cell, cell, style))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}
