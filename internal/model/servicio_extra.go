package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServicioExtra es un ítem facturable que no produce archivos: planchado,
// costura, armado, o una línea del ERP sin desglose de sublíneas.
type ServicioExtra struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrdenID     uuid.UUID `gorm:"type:uuid;not null;index"`
	CodArt      string
	CodStock    string
	Descripcion string          `gorm:"not null"`
	Cantidad    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Precio      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Observacion string
	CreatedAt   time.Time
}

func (ServicioExtra) TableName() string { return "servicios_extra" }
