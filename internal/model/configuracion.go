package model

import "time"

// ClaveUltimaFactura es la clave bajo la que se persiste el número de la
// última factura del ERP completamente ingresada (watermark del sync).
const ClaveUltimaFactura = "ultima_factura_procesada"

// ConfiguracionGlobal es la tabla clave/valor de configuración persistida.
type ConfiguracionGlobal struct {
	Clave     string `gorm:"primaryKey"`
	Valor     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (ConfiguracionGlobal) TableName() string { return "configuracion_global" }
