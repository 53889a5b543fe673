package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"printflow/internal/model"
)

type OrdenRepository interface {
	Create(ctx context.Context, tx *gorm.DB, o *model.Orden) error
	CreateArchivos(ctx context.Context, tx *gorm.DB, archivos []model.ArchivoProduccion) error
	CreateReferencias(ctx context.Context, tx *gorm.DB, items []model.ItemReferencia) error
	CreateServicios(ctx context.Context, tx *gorm.DB, servicios []model.ServicioExtra) error
	UpdateCantArchivos(ctx context.Context, tx *gorm.DB, ordenID uuid.UUID, cant int) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Orden, error)

	// Soporte del worker de medición.
	ArchivosSinConfirmar(ctx context.Context, ordenID uuid.UUID) ([]model.ArchivoProduccion, error)
	ArchivosActivos(ctx context.Context, ordenID uuid.UUID) ([]model.ArchivoProduccion, error)
	ServiciosDeOrden(ctx context.Context, ordenID uuid.UUID) ([]model.ServicioExtra, error)
	UpdateArchivo(ctx context.Context, a *model.ArchivoProduccion) error
	LimpiarMediciones(ctx context.Context, ordenID uuid.UUID) error
	UpdateMagnitud(ctx context.Context, ordenID uuid.UUID, magnitud string) error

	DB() *gorm.DB // expone la base para que el servicio abra la transacción
}

type ordenRepo struct{ db *gorm.DB }

func NewOrdenRepository(db *gorm.DB) OrdenRepository { return &ordenRepo{db: db} }

func (r *ordenRepo) DB() *gorm.DB { return r.db }

func (r *ordenRepo) Create(ctx context.Context, tx *gorm.DB, o *model.Orden) error {
	return tx.WithContext(ctx).Create(o).Error
}

func (r *ordenRepo) CreateArchivos(ctx context.Context, tx *gorm.DB, archivos []model.ArchivoProduccion) error {
	if len(archivos) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&archivos).Error
}

func (r *ordenRepo) CreateReferencias(ctx context.Context, tx *gorm.DB, items []model.ItemReferencia) error {
	if len(items) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *ordenRepo) CreateServicios(ctx context.Context, tx *gorm.DB, servicios []model.ServicioExtra) error {
	if len(servicios) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&servicios).Error
}

func (r *ordenRepo) UpdateCantArchivos(ctx context.Context, tx *gorm.DB, ordenID uuid.UUID, cant int) error {
	return tx.WithContext(ctx).Model(&model.Orden{}).
		Where("id = ?", ordenID).
		Update("cant_archivos", cant).Error
}

func (r *ordenRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Orden, error) {
	var o model.Orden
	err := r.db.WithContext(ctx).
		Preload("Archivos").Preload("Referencias").Preload("Servicios").
		First(&o, id).Error
	return &o, err
}

func (r *ordenRepo) ArchivosSinConfirmar(ctx context.Context, ordenID uuid.UUID) ([]model.ArchivoProduccion, error) {
	var archivos []model.ArchivoProduccion
	err := r.db.WithContext(ctx).
		Where("orden_id = ? AND NOT medida_confirmada AND estado <> 'cancelado'", ordenID).
		Find(&archivos).Error
	return archivos, err
}

func (r *ordenRepo) ArchivosActivos(ctx context.Context, ordenID uuid.UUID) ([]model.ArchivoProduccion, error) {
	var archivos []model.ArchivoProduccion
	err := r.db.WithContext(ctx).
		Where("orden_id = ? AND estado <> 'cancelado'", ordenID).
		Find(&archivos).Error
	return archivos, err
}

func (r *ordenRepo) ServiciosDeOrden(ctx context.Context, ordenID uuid.UUID) ([]model.ServicioExtra, error) {
	var servicios []model.ServicioExtra
	err := r.db.WithContext(ctx).Where("orden_id = ?", ordenID).Find(&servicios).Error
	return servicios, err
}

func (r *ordenRepo) UpdateArchivo(ctx context.Context, a *model.ArchivoProduccion) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *ordenRepo) LimpiarMediciones(ctx context.Context, ordenID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.ArchivoProduccion{}).
		Where("orden_id = ?", ordenID).
		Updates(map[string]interface{}{
			"medida_confirmada": false,
			"ancho_m":           0,
			"alto_m":            0,
		}).Error
}

func (r *ordenRepo) UpdateMagnitud(ctx context.Context, ordenID uuid.UUID, magnitud string) error {
	return r.db.WithContext(ctx).Model(&model.Orden{}).
		Where("id = ?", ordenID).
		Update("magnitud", magnitud).Error
}
