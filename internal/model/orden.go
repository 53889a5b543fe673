package model

import (
	"time"

	"github.com/google/uuid"
)

// Orden es una orden de producción interna derivada de un documento del ERP.
// Un documento puede descomponerse en varias órdenes, una por área de
// producción (DTF, sublimación, bordado, láser…).
// Estado: "pendiente" | "en_proceso" | "terminada" | "despachada" | "cancelada"
// Variante: "Estándar" | "Solo Servicios"
type Orden struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// Secuencia is the human-facing label "<NroDoc> (i/K)" where K is the
	// number of areas the source document was split into.
	Secuencia string `gorm:"not null;index"`
	NroDoc    string `gorm:"not null;index"`
	AreaID    string `gorm:"not null;index"`
	Cliente   string `gorm:"not null"`
	Trabajo   string
	Prioridad string
	// Material is the comma-joined set of material names seen across the
	// area's lines, truncated to 200 characters.
	Material     string    `gorm:"type:varchar(200)"`
	Variante     string    `gorm:"not null;default:'Estándar'"`
	Estado       string    `gorm:"not null;default:'pendiente'"`
	Tinta        *string
	Retiro       *string
	// Notas guarda la observación general del documento del ERP; se repite
	// en cada orden derivada del mismo documento.
	Notas        string
	FechaIngreso time.Time `gorm:"not null"`
	FechaEntrega time.Time `gorm:"not null"`
	CantArchivos int       `gorm:"not null;default:0"`
	// Magnitud is the aggregate measured quantity (meters, units…) kept as
	// text because the unit depends on the area. Recomputed by the
	// measurement worker after each confirmed file.
	Magnitud  string `gorm:"not null;default:'0'"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Archivos    []ArchivoProduccion `gorm:"foreignKey:OrdenID"`
	Referencias []ItemReferencia    `gorm:"foreignKey:OrdenID"`
	Servicios   []ServicioExtra     `gorm:"foreignKey:OrdenID"`
}

// TableName overrides GORM's default pluralization for Spanish names.
func (Orden) TableName() string { return "ordenes" }
