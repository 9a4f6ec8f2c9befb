package synth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Martin-Flores-L/sap-scripts-generator/internal/templates"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/types"
)

const (
	headerLines = 15
	changeLines = 2
)

func newTestSynthesizer() *Synthesizer {
	return New(Options{
		User:        "JDOE",
		Plant:       "PE06",
		LogPath:     `C:\VR\reservas.txt`,
		CostCenters: templates.DefaultCostCenters(),
		Today: func() time.Time {
			return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
		},
	})
}

func emissionRecord(key string, material, quantity int) types.Record {
	return types.Record{
		TransactionKey: key,
		OrderCode:      key,
		Operation:      types.OperationEmission,
		MovementCode:   "221",
		SecondaryID:    "IP-" + key,
		ContextCode:    "EC-" + key,
		MaterialCode:   material,
		Quantity:       quantity,
		StorageCode:    "0002",
		CostElement:    "P-1",
		Status:         "PENDIENTE",
	}
}

func countContaining(lines []string, substr string) int {
	n := 0
	for _, l := range lines {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}

func TestSynthesizer_Reservation(t *testing.T) {
	s := newTestSynthesizer()

	t.Run("Should generate one reservation for a single pending record", func(t *testing.T) {
		rec := emissionRecord("PO1", 123, 5)
		rec.SecondaryID = "IP1"
		rec.ContextCode = "EC1"

		script, err := s.Emission([]types.Record{rec}, types.Movement221)
		require.NoError(t, err)

		assert.Equal(t, types.StatusGenerated, script.Status)
		assert.Equal(t, "221", script.Name)
		assert.Equal(t, 1, countContaining(script.Lines, "chkRESB-XWAOK["))
		assert.Equal(t, 1, countContaining(script.Lines, `ctxtRESB-MATNR[0,7]").text = "123"`))
		assert.Equal(t, 1, countContaining(script.Lines, `txtRESB-ERFMG[0,26]").text = "5"`))
		assert.Equal(t, 1, countContaining(script.Lines, `ctxtRESB-LGORT[0,53]").text = "0002"`))
		assert.Equal(t, []string{"PO1,IP1,221,EC1"}, script.LogLines())
		assert.Empty(t, script.Skipped)
	})

	t.Run("Should open MB21 with the movement type and end with back", func(t *testing.T) {
		script, err := s.Emission([]types.Record{emissionRecord("PO1", 1, 1)}, types.Movement221)
		require.NoError(t, err)

		lines := script.Lines
		assert.Equal(t, `session.findById("wnd[0]/tbar[0]/okcd").text = "mb21"`, lines[headerLines])
		assert.Equal(t, `session.findById("wnd[0]/usr/ctxtRM07M-BWART").text = "221"`, lines[headerLines+2])
		assert.Equal(t, `session.findById("wnd[0]/tbar[0]/btn[15]").press`, lines[len(lines)-1])
		assert.Equal(t, 1, countContaining(lines, "btn[15]"))
	})

	t.Run("Should keep the last quantity for a repeated material", func(t *testing.T) {
		records := []types.Record{
			emissionRecord("PO1", 100, 1),
			emissionRecord("PO1", 200, 2),
			emissionRecord("PO1", 100, 9),
		}
		script, err := s.Emission(records, types.Movement221)
		require.NoError(t, err)

		assert.Equal(t, 2, countContaining(script.Lines, "chkRESB-XWAOK["))
		assert.Equal(t, 1, countContaining(script.Lines, `ctxtRESB-MATNR[0,7]").text = "100"`))
		assert.Equal(t, 1, countContaining(script.Lines, `txtRESB-ERFMG[0,26]").text = "9"`))
		assert.Equal(t, 1, countContaining(script.Lines, `ctxtRESB-MATNR[1,7]").text = "200"`))
		assert.Zero(t, countContaining(script.Lines, `txtRESB-ERFMG[0,26]").text = "1"`))
	})

	t.Run("Should keep transaction keys in first-seen order", func(t *testing.T) {
		records := []types.Record{
			emissionRecord("PO2", 1, 1),
			emissionRecord("PO1", 2, 1),
			emissionRecord("PO2", 3, 1),
		}
		script, err := s.Emission(records, types.Movement221)
		require.NoError(t, err)

		require.Len(t, script.LogEntries, 2)
		assert.Equal(t, "PO2", script.LogEntries[0].OrderCode)
		assert.Equal(t, "PO1", script.LogEntries[1].OrderCode)
		assert.Equal(t, 2, countContaining(script.Lines, "file.WriteLine"))
	})

	t.Run("Should skip and report a group without cost element", func(t *testing.T) {
		bad := emissionRecord("PO9", 1, 1)
		bad.CostElement = ""
		script, err := s.Emission([]types.Record{bad, emissionRecord("PO1", 2, 1)}, types.Movement221)
		require.NoError(t, err)

		assert.Equal(t, []types.Skip{{Key: "PO9", Reason: ReasonNoCostElement}}, script.Skipped)
		require.Len(t, script.LogEntries, 1)
		assert.Equal(t, "PO1", script.LogEntries[0].OrderCode)
		assert.Zero(t, countContaining(script.Lines, `"PO9"`))
	})

	t.Run("Should use the fallback area function for an unknown cost center", func(t *testing.T) {
		rec := emissionRecord("PO1", 1, 1)
		rec.MovementCode = "201"
		rec.CostElement = "123456789"
		script, err := s.Emission([]types.Record{rec}, types.Movement201)
		require.NoError(t, err)

		assert.Equal(t, 1, countContaining(script.Lines, `ctxtCOBL-FKBER").text = "Default if not found"`))
	})

	t.Run("Should generate a return logging PO first and SVR last", func(t *testing.T) {
		rec := emissionRecord("SVR1", 1, 1)
		rec.Operation = types.OperationReturn
		rec.OrderCode = "PO1"
		rec.RequestCode = "SVR1"
		script, err := s.Return([]types.Record{rec}, types.Movement221)
		require.NoError(t, err)

		assert.Equal(t, "222", script.Name)
		assert.Equal(t, types.OperationReturn, script.Operation)
		assert.Equal(t, []string{"PO1,IP-SVR1,221,EC-SVR1,SVR1"}, script.LogLines())
		assert.Equal(t, 1, countContaining(script.Lines, `ctxtKM07R-SAKNR").text = "2303000000"`))
		assert.Equal(t, 1, countContaining(script.Lines, `poCode = "PO1"`))
		assert.Equal(t, 1, countContaining(script.Lines, `svrCode = "SVR1"`))
	})

	t.Run("Should report no input for an empty record set", func(t *testing.T) {
		script, err := s.Emission(nil, types.Movement201)
		require.NoError(t, err)
		assert.Equal(t, types.StatusNoInput, script.Status)
		assert.True(t, script.Empty())
		assert.Equal(t, "201", script.Name)
	})

	t.Run("Should be deterministic", func(t *testing.T) {
		records := []types.Record{
			emissionRecord("PO1", 1, 1),
			emissionRecord("PO2", 2, 2),
			emissionRecord("PO1", 3, 3),
		}
		first, err := s.Emission(records, types.Movement221)
		require.NoError(t, err)
		second, err := s.Emission(records, types.Movement221)
		require.NoError(t, err)
		assert.Equal(t, first.Text(), second.Text())
	})
}

func changeRecord(vr string, position, quantity int) types.Record {
	return types.Record{
		TransactionKey: "SVR-" + vr,
		ReservationID:  vr,
		Position:       position,
		Quantity:       quantity,
		MaterialCode:   1000 + position,
		StorageCode:    "0002",
		CostElement:    "P-1",
		Status:         "PENDIENTE",
	}
}

func TestSynthesizer_Modify(t *testing.T) {
	s := newTestSynthesizer()

	t.Run("Should join once and set quantities in position order", func(t *testing.T) {
		records := []types.Record{changeRecord("VR9", 1, 10), changeRecord("VR9", 2, 20)}
		records[0].Operation = types.OperationModify
		records[1].Operation = types.OperationModify

		script, err := s.Modify(records)
		require.NoError(t, err)

		want := []string{
			`session.findById("wnd[0]/usr/ctxtRM07M-RSNUM").text = "VR9"`,
			`session.findById("wnd[0]/usr/ctxtRM07M-RSNUM").caretPosition = 7`,
			`session.findById("wnd[0]").sendVKey 0`,
			`session.findById("wnd[0]/usr/sub:SAPMM07R:0521/txtRESB-ERFMG[0,26]").text = "10"`,
			`session.findById("wnd[0]/usr/sub:SAPMM07R:0521/txtRESB-ERFMG[1,26]").text = "20"`,
			`session.findById("wnd[0]/tbar[0]/btn[11]").press`,
			`session.findById("wnd[0]/tbar[0]/btn[15]").press`,
		}
		require.Len(t, script.Lines, headerLines+changeLines+len(want))
		assert.Empty(t, cmp.Diff(want, script.Lines[headerLines+changeLines:]))
		assert.Equal(t, `session.findById("wnd[0]/tbar[0]/okcd").text = "mb22"`, script.Lines[headerLines])
		assert.Equal(t, "mod", script.Name)
	})

	t.Run("Should keep the last quantity for a repeated position", func(t *testing.T) {
		script, err := s.Modify([]types.Record{
			changeRecord("1", 2, 5),
			changeRecord("1", 1, 7),
			changeRecord("1", 2, 8),
		})
		require.NoError(t, err)

		assert.Equal(t, 1, countContaining(script.Lines, `ERFMG[1,26]").text = "8"`))
		assert.Zero(t, countContaining(script.Lines, `ERFMG[1,26]").text = "5"`))
		assert.Equal(t, 2, countContaining(script.Lines, "txtRESB-ERFMG"))
	})

	t.Run("Should save every reservation and go back once", func(t *testing.T) {
		script, err := s.Modify([]types.Record{changeRecord("1", 1, 1), changeRecord("2", 1, 1)})
		require.NoError(t, err)

		assert.Equal(t, 2, countContaining(script.Lines, "ctxtRM07M-RSNUM\").text"))
		assert.Equal(t, 2, countContaining(script.Lines, "btn[11]"))
		assert.Equal(t, 1, countContaining(script.Lines, "btn[15]"))
	})

	t.Run("Should skip records without reservation or valid position", func(t *testing.T) {
		script, err := s.Modify([]types.Record{
			changeRecord("", 1, 1),
			changeRecord("5", 0, 1),
			changeRecord("6", 0, 1),
			changeRecord("6", 3, 4),
		})
		require.NoError(t, err)

		assert.Equal(t, []types.Skip{
			{Key: "SVR-", Reason: ReasonNoReservation},
			{Key: "5/0", Reason: ReasonBadPosition},
			{Key: "5", Reason: ReasonNoPositions},
			{Key: "6/0", Reason: ReasonBadPosition},
		}, script.Skipped)
		assert.Equal(t, 1, countContaining(script.Lines, "ctxtRM07M-RSNUM\").text"))
		assert.Equal(t, 1, countContaining(script.Lines, `ERFMG[2,26]").text = "4"`))
	})
}

func TestSynthesizer_DeleteAndFinalize(t *testing.T) {
	s := newTestSynthesizer()
	records := []types.Record{changeRecord("77", 3, 1), changeRecord("77", 1, 1)}

	t.Run("Should flag and zero each position for deletion", func(t *testing.T) {
		script, err := s.Delete(records)
		require.NoError(t, err)

		body := script.Lines[headerLines+changeLines+3:]
		assert.Equal(t, `session.findById("wnd[0]/usr/sub:SAPMM07R:0521/chkRESB-XLOEK[2,83]").selected = true`, body[0])
		assert.Equal(t, `session.findById("wnd[0]/usr/sub:SAPMM07R:0521/txtRESB-ERFMG[2,26]").text = "0"`, body[1])
		assert.Equal(t, `session.findById("wnd[0]/usr/sub:SAPMM07R:0521/chkRESB-XLOEK[0,83]").selected = true`, body[2])
		assert.Equal(t, "del", script.Name)
	})

	t.Run("Should set the final-issue flag for each position", func(t *testing.T) {
		script, err := s.Finalize(records)
		require.NoError(t, err)

		assert.Equal(t, 2, countContaining(script.Lines, "chkRESB-KZEAR"))
		assert.Equal(t, "sfin", script.Name)
	})
}

func TestSynthesizer_Add(t *testing.T) {
	s := newTestSynthesizer()

	t.Run("Should use the cost-center confirmation for a mapped cost element", func(t *testing.T) {
		a := changeRecord("500", 0, 3)
		a.CostElement = "200000703"
		b := changeRecord("500", 0, 4)
		b.CostElement = "200000703"
		b.StorageCode = "0107"

		script, err := s.Add([]types.Record{a, b})
		require.NoError(t, err)

		assert.Equal(t, 1, countContaining(script.Lines, `ctxtRM07M-BDTER").text = "19.10.2026"`))
		assert.Equal(t, 1, countContaining(script.Lines, `chkRESB-XWAOK[1,76]").selected = true`))
		assert.Equal(t, 1, countContaining(script.Lines, `ctxtRESB-LGORT[1,53]").text = "0107"`))
		assert.Equal(t, 1, countContaining(script.Lines, `SAPLKACB:1013/ctxtCOBL-FKBER").text = "200000703"`))
		assert.Zero(t, countContaining(script.Lines, "NO_PRESUP"))
		assert.Equal(t, "add", script.Name)
	})

	t.Run("Should use the project confirmation otherwise", func(t *testing.T) {
		script, err := s.Add([]types.Record{changeRecord("500", 0, 3)})
		require.NoError(t, err)

		assert.Equal(t, 1, countContaining(script.Lines, `SAPLKACB:9000/ctxtCOBL-FKBER").text = "NO_PRESUP"`))
		assert.Equal(t, 2, countContaining(script.Lines, `tbar[0]/btn[11]").press`))
	})
}

func TestSynthesizer_EmptyInput(t *testing.T) {
	s := newTestSynthesizer()

	for name, run := range map[string]func([]types.Record) (*types.Script, error){
		"modify":   s.Modify,
		"delete":   s.Delete,
		"finalize": s.Finalize,
		"add":      s.Add,
		"return": func(r []types.Record) (*types.Script, error) {
			return s.Return(r, types.Movement201)
		},
	} {
		t.Run("Should report no input for "+name, func(t *testing.T) {
			script, err := run([]types.Record{})
			require.NoError(t, err)
			assert.Equal(t, types.StatusNoInput, script.Status)
			assert.Empty(t, script.Lines)
			assert.Empty(t, script.LogEntries)
		})
	}
}
