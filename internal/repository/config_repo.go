package repository

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"printflow/internal/model"
)

type ConfigRepository interface {
	// UltimaFactura lee el watermark; sin fila devuelve 0.
	UltimaFactura(ctx context.Context) (int, error)
	// SetUltimaFactura avanza el watermark dentro de la transacción del
	// ciclo: se comparte commit con las órdenes que produjo.
	SetUltimaFactura(ctx context.Context, tx *gorm.DB, nroFact int) error
}

type configRepo struct{ db *gorm.DB }

func NewConfigRepository(db *gorm.DB) ConfigRepository { return &configRepo{db: db} }

func (r *configRepo) UltimaFactura(ctx context.Context) (int, error) {
	var fila model.ConfiguracionGlobal
	err := r.db.WithContext(ctx).
		Where("clave = ?", model.ClaveUltimaFactura).
		First(&fila).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(fila.Valor)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *configRepo) SetUltimaFactura(ctx context.Context, tx *gorm.DB, nroFact int) error {
	return tx.WithContext(ctx).
		Exec(`INSERT INTO configuracion_global (clave, valor, updated_at)
		      VALUES (?, ?, NOW())
		      ON CONFLICT (clave) DO UPDATE SET valor = EXCLUDED.valor, updated_at = NOW()`,
			model.ClaveUltimaFactura, strconv.Itoa(nroFact)).Error
}
