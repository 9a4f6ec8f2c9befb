package templates

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLibrary() *Library {
	return New("JDOE", "PE06", DefaultCostCenters())
}

func TestLibrary_BusinessContext(t *testing.T) {
	lib := newTestLibrary()

	t.Run("Should write the fallback for an unmapped cost center under 201", func(t *testing.T) {
		lines, err := lib.BusinessContext("201", "999999999")
		require.NoError(t, err)
		require.Len(t, lines, 3)
		assert.Equal(t,
			`session.findById("wnd[0]/usr/subBLOCK:SAPLKACB:1013/ctxtCOBL-FKBER").text = "Default if not found"`,
			lines[2])
	})

	t.Run("Should resolve a mapped cost center under 201", func(t *testing.T) {
		lines, err := lib.BusinessContext("201", "200000703")
		require.NoError(t, err)
		want := []string{
			`session.findById("wnd[0]/usr/txtRKPF-WEMPF").text = "JDOE"`,
			`session.findById("wnd[0]/usr/subBLOCK:SAPLKACB:1013/ctxtCOBL-KOSTL").text = "200000703"`,
			`session.findById("wnd[0]/usr/subBLOCK:SAPLKACB:1013/ctxtCOBL-FKBER").text = "90010010"`,
		}
		assert.Empty(t, cmp.Diff(want, lines))
	})

	t.Run("Should use the project element and NO_PRESUP under 221", func(t *testing.T) {
		lines, err := lib.BusinessContext("221", "P-1")
		require.NoError(t, err)
		want := []string{
			`session.findById("wnd[0]/usr/txtRKPF-WEMPF").text = "JDOE"`,
			`session.findById("wnd[0]/usr/subBLOCK:SAPLKACB:9000/ctxtCOBL-PS_POSID").text = "P-1"`,
			`session.findById("wnd[0]/usr/subBLOCK:SAPLKACB:9000/ctxtCOBL-FKBER").text = "NO_PRESUP"`,
		}
		assert.Empty(t, cmp.Diff(want, lines))
	})

	t.Run("Should prepend the return account under 222", func(t *testing.T) {
		lines, err := lib.BusinessContext("222", "P-1")
		require.NoError(t, err)
		require.Len(t, lines, 4)
		assert.Equal(t, `session.findById("wnd[0]/usr/ctxtKM07R-SAKNR").text = "2303000000"`, lines[0])
		assert.Contains(t, lines[2], `ctxtCOBL-PS_POSID").text = "P-1"`)
	})

	t.Run("Should treat 202 like 201", func(t *testing.T) {
		lines, err := lib.BusinessContext("202", "200000702")
		require.NoError(t, err)
		require.Len(t, lines, 3)
		assert.Contains(t, lines[2], `"92030040"`)
	})
}

func TestLibrary_Blocks(t *testing.T) {
	lib := newTestLibrary()

	t.Run("Should render one check line per material", func(t *testing.T) {
		lines, err := lib.Select(3)
		require.NoError(t, err)
		require.Len(t, lines, 3)
		assert.Equal(t, `session.findById("wnd[0]/usr/sub:SAPMM07R:0521/chkRESB-XWAOK[2,76]").selected = true`, lines[2])
	})

	t.Run("Should render nothing for zero materials", func(t *testing.T) {
		lines, err := lib.Select(0)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("Should fill material quantity and storage per item", func(t *testing.T) {
		lines, err := lib.Fill([]Item{{Material: 123, Quantity: 5, Storage: "0002"}})
		require.NoError(t, err)
		want := []string{
			`session.findById("wnd[0]/usr/sub:SAPMM07R:0521/ctxtRESB-MATNR[0,7]").text = "123"`,
			`session.findById("wnd[0]/usr/sub:SAPMM07R:0521/txtRESB-ERFMG[0,26]").text = "5"`,
			`session.findById("wnd[0]/usr/sub:SAPMM07R:0521/ctxtRESB-LGORT[0,53]").text = "0002"`,
		}
		assert.Empty(t, cmp.Diff(want, lines))
	})

	t.Run("Should press enter once per material when confirming", func(t *testing.T) {
		lines, err := lib.Confirm(2)
		require.NoError(t, err)
		require.Len(t, lines, 9)
		assert.Equal(t, `session.findById("wnd[0]").sendVKey 11`, lines[0])
		assert.Equal(t, `session.findById("wnd[0]").sendVKey 0`, lines[1])
		assert.Equal(t, `session.findById("wnd[0]").sendVKey 0`, lines[2])
		assert.Equal(t, `session.findById("wnd[0]/sbar").doubleClick`, lines[3])
	})

	t.Run("Should write the request code only for returns", func(t *testing.T) {
		lines, err := lib.WriteLog(`C:\logs\vr.txt`, false)
		require.NoError(t, err)
		assert.Equal(t, `filePath = "C:\logs\vr.txt"`, lines[0])
		assert.Contains(t, lines[3], `reservationNumber & "," & poCode & ","`)
		assert.NotContains(t, lines[3], "svrCode")

		lines, err = lib.WriteLog(`C:\logs\vr.txt`, true)
		require.NoError(t, err)
		assert.Contains(t, lines[3], `reservationNumber & "," & poCode & ","`)
		assert.True(t, strings.HasSuffix(lines[3], `& "," & ecCode & "," & svrCode`))
	})

	t.Run("Should assign the request variable only for returns", func(t *testing.T) {
		lines, err := lib.Details(Details{OrderCode: "PO1", SecondaryID: "IP1", MovementCode: "221", ContextCode: "EC1"})
		require.NoError(t, err)
		assert.Equal(t, []string{
			`poCode = "PO1"`,
			`ipCode = "IP1"`,
			`movSAP = "221"`,
			`ecCode = "EC1"`,
		}, lines)

		lines, err = lib.Details(Details{OrderCode: "PO1", RequestCode: "SVR1", Return: true})
		require.NoError(t, err)
		require.Len(t, lines, 5)
		assert.Equal(t, `poCode = "PO1"`, lines[0])
		assert.Equal(t, `svrCode = "SVR1"`, lines[4])
	})

	t.Run("Should escape quotes in text values", func(t *testing.T) {
		lines, err := lib.Details(Details{OrderCode: `P"O`})
		require.NoError(t, err)
		assert.Equal(t, `poCode = "P""O"`, lines[0])
	})

	t.Run("Should address positions zero based", func(t *testing.T) {
		lines, err := lib.Delete([]int{1, 3})
		require.NoError(t, err)
		want := []string{
			`session.findById("wnd[0]/usr/sub:SAPMM07R:0521/chkRESB-XLOEK[0,83]").selected = true`,
			`session.findById("wnd[0]/usr/sub:SAPMM07R:0521/txtRESB-ERFMG[0,26]").text = "0"`,
			`session.findById("wnd[0]/usr/sub:SAPMM07R:0521/chkRESB-XLOEK[2,83]").selected = true`,
			`session.findById("wnd[0]/usr/sub:SAPMM07R:0521/txtRESB-ERFMG[2,26]").text = "0"`,
		}
		assert.Empty(t, cmp.Diff(want, lines))

		lines, err = lib.Finalize([]int{2})
		require.NoError(t, err)
		assert.Equal(t, []string{`session.findById("wnd[0]/usr/sub:SAPMM07R:0521/chkRESB-KZEAR[1,78]").selected = true`}, lines)
	})

	t.Run("Should pick the add confirmation by sub-family", func(t *testing.T) {
		lines, err := lib.AddConfirm(2, "200000703", true)
		require.NoError(t, err)
		require.Len(t, lines, 7)
		assert.Contains(t, lines[3], `ctxtCOBL-FKBER").text = "200000703"`)

		lines, err = lib.AddConfirm(1, "P-1", false)
		require.NoError(t, err)
		require.Len(t, lines, 6)
		assert.Contains(t, lines[3], `ctxtCOBL-FKBER").text = "NO_PRESUP"`)
	})

	t.Run("Should enter the plant and date in the add dialog", func(t *testing.T) {
		lines, err := lib.AddDialog("19.10.2026")
		require.NoError(t, err)
		require.Len(t, lines, 6)
		assert.Equal(t, `session.findById("wnd[1]/usr/ctxtRM07M-BDTER").text = "19.10.2026"`, lines[1])
		assert.Equal(t, `session.findById("wnd[1]/usr/ctxtRM07M-WERKS").text = "PE06"`, lines[2])
	})

	t.Run("Should render the attach header without blank lines", func(t *testing.T) {
		lines, err := lib.Header()
		require.NoError(t, err)
		require.Len(t, lines, 15)
		assert.Equal(t, `If Not IsObject(application) Then`, lines[0])
		assert.Equal(t, `session.findById("wnd[0]").maximize`, lines[14])
	})
}

func TestCostCenters(t *testing.T) {
	t.Run("Should not share the source map", func(t *testing.T) {
		src := map[string]string{"1": "A"}
		centers := NewCostCenters(src)
		src["1"] = "B"
		src["2"] = "C"

		assert.Equal(t, "A", centers.AreaFunction("1"))
		assert.False(t, centers.Contains("2"))
		assert.Equal(t, []string{"1"}, centers.Codes())
	})

	t.Run("Should fall back on the zero value", func(t *testing.T) {
		var centers CostCenters
		assert.Equal(t, AreaFunctionFallback, centers.AreaFunction("200000703"))
		assert.Empty(t, centers.Codes())
	})
}
