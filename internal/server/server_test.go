package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Martin-Flores-L/sap-scripts-generator/internal/config"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/testutil"
	"github.com/Martin-Flores-L/sap-scripts-generator/pkg/logger"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.ReservationLogPath = `C:\VR\log.txt`
	s := New(cfg, logger.NewLogger(logger.TestConfig()))
	s.now = func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) }
	return s
}

func uploadRequest(t *testing.T, path string, fields map[string]string, fileName string, data []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestServer_Welcome(t *testing.T) {
	s := newTestServer(t)

	t.Run("Should answer with the welcome message and a request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, MessageWelcome, decode(t, w)["message"])
		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	})

	t.Run("Should echo a caller supplied request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})
}

func TestServer_Emissions(t *testing.T) {
	s := newTestServer(t)
	fields := map[string]string{"sap_user": "JDOE", "file_output": `D:\logs\vr.txt`}

	t.Run("Should return both movement scripts", func(t *testing.T) {
		data := testutil.Workbook(t, "Sheet1", testutil.EmissionHeader,
			testutil.EmissionRow("PO1", 221, "Emision", 123, 5, 2, "P-1", "IP1", "EC1", "PENDIENTE"),
			testutil.EmissionRow("PO4", 999, "Emision", 111, 1, 2, "P-1", "IP4", "EC4", "PENDIENTE"),
		)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, uploadRequest(t, "/emisiones/", fields, "emisiones.xlsx", data))

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, MessageEmissionsDone, body["message"])
		assert.Contains(t, body["script_221"], `"JDOE"`)
		assert.Contains(t, body["script_221"], `D:\logs\vr.txt`)
		assert.Equal(t, "", body["script_201"])
		assert.Equal(t, map[string]any{"221": []any{"PO1,IP1,221,EC1"}}, body["logs"])

		unclassified, ok := body["unclassified"].([]any)
		require.True(t, ok)
		require.Len(t, unclassified, 1)
		assert.Equal(t, "PO4", unclassified[0].(map[string]any)["key"])
	})

	t.Run("Should report a file without pending records", func(t *testing.T) {
		data := testutil.Workbook(t, "Sheet1", testutil.EmissionHeader,
			testutil.EmissionRow("PO1", 221, "Emision", 123, 5, 2, "P-1", "IP1", "EC1", "ATENDIDO"),
		)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, uploadRequest(t, "/emisiones/", fields, "emisiones.xlsx", data))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]any{"message": MessageNoPending, "script": ""}, decode(t, w))
	})

	t.Run("Should report pending records that produced no script", func(t *testing.T) {
		data := testutil.Workbook(t, "Sheet1", testutil.EmissionHeader,
			testutil.EmissionRow("PO4", 999, "Emision", 111, 1, 2, "P-1", "IP4", "EC4", "PENDIENTE"),
		)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, uploadRequest(t, "/emisiones/", fields, "emisiones.xlsx", data))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, MessageNothingGenerated, decode(t, w)["message"])
	})

	t.Run("Should reject a file that is not a workbook", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, uploadRequest(t, "/emisiones/", fields, "emisiones.csv", []byte("a,b")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, MessageBadFormat, decode(t, w)["detail"])
	})

	t.Run("Should reject a request without file", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, uploadRequest(t, "/emisiones/", fields, "", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should reject a request without SAP user", func(t *testing.T) {
		data := testutil.Workbook(t, "Sheet1", testutil.EmissionHeader)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, uploadRequest(t, "/emisiones/", map[string]string{"file_output": "x"}, "e.xlsx", data))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should answer 422 when the sheet is missing", func(t *testing.T) {
		data := testutil.Workbook(t, "DETALLE", testutil.RequestHeader)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, uploadRequest(t, "/emisiones/", fields, "emisiones.xlsx", data))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decode(t, w)["detail"], "Sheet1")
	})

	t.Run("Should answer 500 when the upload is not a valid workbook", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, uploadRequest(t, "/emisiones/", fields, "emisiones.xlsx", []byte("not a zip")))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestServer_Requests(t *testing.T) {
	s := newTestServer(t)

	t.Run("Should return one key per request script", func(t *testing.T) {
		data := testutil.Workbook(t, "DETALLE", testutil.RequestHeader,
			testutil.RequestRow("SVR1", "PO1", 221, 0, 123, 5, "devolucion", "", 2, "P-1", "PENDIENTE"),
			testutil.RequestRow("SVR3", "PO3", 221, 1, 0, 10, "Modificar", 7000001, 2, "P-1", "PENDIENTE"),
			testutil.RequestRow("SVR4", "PO4", 221, 0, 0, 0, "Borrar", 7000002, 2, "P-1", "PENDIENTE"),
		)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, uploadRequest(t, "/solicitudes/",
			map[string]string{"sap_user": "JDOE", "file_output": "vr.txt"}, "solicitudes.xlsx", data))

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, MessageRequestsDone, body["message"])
		for _, key := range []string{"script_222", "script_202", "script_add", "script_mod", "script_del", "script_sfin", "script_221", "script_201"} {
			assert.Contains(t, body, key)
		}
		assert.Contains(t, body["script_222"], `"222"`)
		assert.Contains(t, body["script_mod"], `"7000001"`)
		assert.NotContains(t, body["script_del"], "XLOEK")

		skipped, ok := body["skipped"].([]any)
		require.True(t, ok)
		require.NotEmpty(t, skipped)
		assert.Equal(t, "del", skipped[0].(map[string]any)["script"])
	})
}
