package server

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Martin-Flores-L/sap-scripts-generator/internal/converter"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/normalizer"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/synth"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/templates"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/validation"
	"github.com/Martin-Flores-L/sap-scripts-generator/pkg/logger"
)

// Response messages shown by the front end.
const (
	MessageWelcome          = "Bienvenido al API de Automatización de Scripts de SAP"
	MessageNoPending        = "No se encontraron solicitudes pendientes en el archivo."
	MessageNothingGenerated = "No se generaron scripts para los tipos de movimiento especificados."
	MessageEmissionsDone    = "Script de emisiones generado exitosamente."
	MessageRequestsDone     = "Script de solicitudes generado exitosamente."
	MessageBadFormat        = "Formato de archivo inválido. Por favor, suba un archivo .xlsx"
)

// SkipResponse describes a group or position left out of a script.
type SkipResponse struct {
	Script string `json:"script"`
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// UnclassifiedResponse describes a record with an unrouted movement code.
type UnclassifiedResponse struct {
	Row      int    `json:"row"`
	Key      string `json:"key"`
	Movement string `json:"movement"`
}

func (s *Server) handleWelcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": MessageWelcome})
}

func (s *Server) handleEmissions(c *gin.Context) {
	s.handleUpload(c, normalizer.SchemaEmissions, MessageEmissionsDone)
}

func (s *Server) handleRequests(c *gin.Context) {
	s.handleUpload(c, normalizer.SchemaRequests, MessageRequestsDone)
}

// handleUpload converts the uploaded workbook with the given schema.
//
// STATUS CODES:
//   - 400: missing form field, missing file or not an .xlsx upload
//   - 422: the workbook does not match the schema
//   - 500: any other failure
func (s *Server) handleUpload(c *gin.Context, schemaName, doneMessage string) {
	log := logger.FromContext(c.Request.Context()).With("schema", schemaName)

	sapUser := strings.TrimSpace(c.PostForm("sap_user"))
	if sapUser == "" {
		sapUser = s.cfg.SAPUser
	}
	if sapUser == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "El campo sap_user es obligatorio."})
		return
	}

	logPath := strings.TrimSpace(c.PostForm("file_output"))
	if logPath == "" {
		logPath = s.cfg.ReservationLogPath
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "El campo file es obligatorio."})
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		c.JSON(http.StatusBadRequest, gin.H{"detail": MessageBadFormat})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No se pudo leer el archivo subido."})
		return
	}
	defer file.Close()

	opts := converter.Options{
		Synth: synth.Options{
			User:        sapUser,
			Plant:       s.cfg.Plant,
			LogPath:     logPath,
			CostCenters: templates.NewCostCenters(s.cfg.CostCenters),
			Today:       s.now,
		},
		Format: converter.FormatXLSX,
		Logger: log,
	}
	if kind, ok := s.cfg.FileKindBySchema(schemaName); ok {
		opts.Cleanup = kind.CleanupRules
	}

	result, err := converter.New(opts).Convert(file, schemaName)
	if err != nil {
		var schemaErr *validation.SchemaError
		if errors.As(err, &schemaErr) {
			log.Warn("Rejected workbook", "file", header.Filename, "error", err)
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": schemaErr.Error()})
			return
		}
		log.Error("Failed to process workbook", "file", header.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Ocurrió un error al procesar el archivo: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, buildResponse(result, doneMessage))
}

// buildResponse renders a conversion result as the front end expects it:
// one "script_<name>" key per script, empty when nothing was generated.
func buildResponse(result *converter.Result, doneMessage string) gin.H {
	if result.Empty() {
		return gin.H{"message": MessageNoPending, "script": ""}
	}

	message := doneMessage
	if len(result.Generated()) == 0 {
		message = MessageNothingGenerated
	}

	body := gin.H{"message": message}
	logs := gin.H{}
	skipped := []SkipResponse{}
	for _, script := range result.Scripts {
		body["script_"+script.Name] = script.Text()
		if len(script.LogEntries) > 0 {
			logs[script.Name] = script.LogLines()
		}
		for _, skip := range script.Skipped {
			skipped = append(skipped, SkipResponse{Script: script.Name, Key: skip.Key, Reason: skip.Reason})
		}
	}

	unclassified := make([]UnclassifiedResponse, len(result.Unclassified))
	for i, r := range result.Unclassified {
		unclassified[i] = UnclassifiedResponse{Row: r.Row, Key: r.TransactionKey, Movement: r.MovementCode}
	}

	body["logs"] = logs
	body["skipped"] = skipped
	body["unclassified"] = unclassified
	return body
}
