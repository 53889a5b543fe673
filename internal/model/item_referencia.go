package model

import (
	"time"

	"github.com/google/uuid"
)

// Tipos de item de referencia, en orden de prioridad de clasificación.
const (
	RefBoceto     = "BOCETO"
	RefLogo       = "LOGO"
	RefCorte      = "CORTE"
	RefReferencia = "REFERENCIA"
)

// ItemReferencia es un adjunto no imprimible de la orden: boceto aprobado,
// logo del cliente, guía de corte, etc.
type ItemReferencia struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrdenID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo      string    `gorm:"type:varchar(20);not null"`
	Archivo   string    `gorm:"not null"`
	Nombre    string    `gorm:"not null"`
	Notas     string
	CreatedAt time.Time
}

func (ItemReferencia) TableName() string { return "items_referencia" }
