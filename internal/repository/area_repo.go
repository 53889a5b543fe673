package repository

import (
	"context"

	"gorm.io/gorm"

	"printflow/internal/model"
)

type AreaRepository interface {
	// ListAll devuelve los mapeos en orden de carga (posición ascendente);
	// ese orden desempata prioridades de área repetidas.
	ListAll(ctx context.Context) ([]model.AreaMapeo, error)
}

type areaRepo struct{ db *gorm.DB }

func NewAreaRepository(db *gorm.DB) AreaRepository { return &areaRepo{db: db} }

func (r *areaRepo) ListAll(ctx context.Context) ([]model.AreaMapeo, error) {
	var mapeos []model.AreaMapeo
	err := r.db.WithContext(ctx).Order("posicion ASC").Find(&mapeos).Error
	return mapeos, err
}
