package model

import (
	"time"

	"github.com/google/uuid"
)

// AreaMapeo mapea el código de grupo del ERP a un área de producción interna.
// Orden define la prioridad de secuenciado entre áreas de un mismo documento;
// Posicion registra el orden de carga de la tabla y desempata valores de
// Orden repetidos, para que el secuenciado sea determinista entre corridas.
type AreaMapeo struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Grupo    string    `gorm:"uniqueIndex;not null"`
	AreaID   string    `gorm:"not null"`
	Orden    int       `gorm:"not null;default:0"`
	Posicion int       `gorm:"not null;default:0"`
	// CodStock permite resolver el área por código de stock cuando el grupo
	// no está mapeado (fallback).
	CodStock  *string `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (AreaMapeo) TableName() string { return "area_mapeos" }
