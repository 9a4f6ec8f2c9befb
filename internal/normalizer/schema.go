package normalizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Martin-Flores-L/sap-scripts-generator/internal/types"
)

// Column names shared by both file kinds.
const (
	ColumnPO          = "PO"
	ColumnSVR         = "SVR"
	ColumnEECC        = "EECC"
	ColumnMovement    = "MOV_SAP"
	ColumnRequestType = "Tipo Solicitud"
	ColumnMaterial    = "Codigo Material"
	ColumnQuantity    = "Cantidad"
	ColumnStorage     = "Codigo Almacen"
	ColumnCostElement = "ELEMENTO PEP"
	ColumnIP          = "IP"
	ColumnVR          = "VR"
	ColumnPosition    = "POS"
	ColumnStatus      = "ESTADO"
)

// Schema names accepted by SchemaByName.
const (
	SchemaEmissions = "emisiones"
	SchemaRequests  = "solicitudes"
)

// ErrUnknownSchema is returned for a schema selector that names no file kind.
var ErrUnknownSchema = errors.New("unknown schema")

// EmissionSchema is the layout of emission-only files (kind A).
func EmissionSchema() *types.Schema {
	return &types.Schema{
		Name:  SchemaEmissions,
		Sheet: "Sheet1",
		Columns: []string{
			ColumnPO, ColumnEECC, "Localidad", ColumnMovement, ColumnRequestType,
			ColumnMaterial, "Descripcion", ColumnQuantity, ColumnStorage,
			ColumnCostElement, ColumnIP, ColumnVR, "SOLICITUD",
			"Codigo destino mercancías", "Gestor", "Numero de registro", ColumnStatus,
		},
		HeaderRows:   1,
		StatusColumn: 16,
		KeyColumn:    ColumnPO,
	}
}

// RequestSchema is the layout of multi-operation request files (kind B).
func RequestSchema() *types.Schema {
	return &types.Schema{
		Name:  SchemaRequests,
		Sheet: "DETALLE",
		Columns: []string{
			ColumnSVR, ColumnPO, ColumnIP, ColumnEECC, ColumnMovement, ColumnPosition,
			ColumnMaterial, "Descripcion", ColumnQuantity, "TIPO SOLICITUD REAL",
			ColumnRequestType, ColumnVR, "VD", ColumnStorage, ColumnCostElement,
			"Observacion", "Codigo destino mercancías", ColumnStatus,
			"FECHA DE ATENCION", "GESTOR", "N°",
		},
		HeaderRows:   1,
		StatusColumn: 17,
		KeyColumn:    ColumnSVR,
	}
}

// SchemaByName resolves a schema selector.
func SchemaByName(name string) (*types.Schema, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case SchemaEmissions, "emissions", "emision", "emisión":
		return EmissionSchema(), nil
	case SchemaRequests, "requests", "solicitud":
		return RequestSchema(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSchema, name)
	}
}

// requiredColumns lists the columns every record reads, for a schema.
func requiredColumns(schema *types.Schema) []string {
	return []string{
		schema.KeyColumn,
		ColumnRequestType,
		ColumnMovement,
		ColumnMaterial,
		ColumnQuantity,
		ColumnStorage,
		ColumnCostElement,
	}
}
