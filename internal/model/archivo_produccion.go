package model

import (
	"time"

	"github.com/google/uuid"
)

// ArchivoProduccion es un archivo imprimible asociado a una orden (una fila
// por sublínea de producción del ERP).
// Estado: "pendiente" | "impreso" | "cancelado"
type ArchivoProduccion struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrdenID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Nombre is the display name: order sequence label + original line description.
	Nombre string `gorm:"not null"`
	// Archivo is the file location descriptor: local path, HTTP URL or a
	// drive reference. Overwritten if the file is relocated to local storage
	// while measuring.
	Archivo    string `gorm:"not null"`
	CantCopias int    `gorm:"not null;default:1"`
	// Metros starts as an even split of the line quantity across the line's
	// sublíneas and is authoritative only once MedidaConfirmada is set by the
	// measurement worker.
	Metros           float64 `gorm:"not null;default:0"`
	AnchoM           float64 `gorm:"not null;default:0"`
	AltoM            float64 `gorm:"not null;default:0"`
	MedidaConfirmada bool    `gorm:"not null;default:false"`
	CodStock         string
	TipoArchivo      string // "pdf" | "imagen" | "desconocido"
	Notas            string
	Estado           string    `gorm:"not null;default:'pendiente'"`
	SubidoEn         time.Time `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (ArchivoProduccion) TableName() string { return "archivos_produccion" }
