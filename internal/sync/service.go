package sync

// service.go
// Orquestación del ciclo de ingreso: ERP → clasificación → agregación →
// persistencia transaccional → avance del watermark. El ciclo completo es
// todo-o-nada: cualquier falla de persistencia revierte el lote entero y el
// watermark queda intacto, así el próximo ciclo vuelve a traer las mismas
// facturas.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"printflow/internal/erp"
	"printflow/internal/repository"
)

// ErrCicloEnCurso se devuelve sin tocar la base cuando se pide un ciclo
// mientras otro sigue en vuelo. El pedido se rechaza, no se encola.
var ErrCicloEnCurso = errors.New("sync: ciclo en curso")

// ERPFeed es la vista del cliente ERP que necesita el ciclo.
type ERPFeed interface {
	FacturasPendientes(ctx context.Context, desdeNroFact int) ([]erp.FacturaPendiente, error)
	FacturaDetalle(ctx context.Context, nroFact int) (*erp.FacturaDetalle, error)
}

// Notificador publica eventos de cambio de órdenes hacia la UI.
type Notificador interface {
	OrdenesCreadas(ctx context.Context, cuenta int)
}

// Resultado resume un ciclo de sync terminado.
type Resultado struct {
	OrdenesCreadas int       `json:"ordenes_creadas"`
	UltimaFactura  int       `json:"ultima_factura"`
	Inicio         time.Time `json:"inicio"`
	Duracion       string    `json:"duracion"`
	Error          string    `json:"error,omitempty"`
}

// Service corre ciclos de sincronización contra el feed del ERP.
type Service struct {
	feed     ERPFeed
	areas    repository.AreaRepository
	ordenes  repository.OrdenRepository
	config   repository.ConfigRepository
	notifier Notificador

	ocupado atomic.Bool

	mu     sync.Mutex
	ultimo *Resultado
}

func NewService(
	feed ERPFeed,
	areas repository.AreaRepository,
	ordenes repository.OrdenRepository,
	config repository.ConfigRepository,
	notifier Notificador,
) *Service {
	return &Service{
		feed:     feed,
		areas:    areas,
		ordenes:  ordenes,
		config:   config,
		notifier: notifier,
	}
}

// Ocupado informa si hay un ciclo en vuelo.
func (s *Service) Ocupado() bool { return s.ocupado.Load() }

// UltimoResultado devuelve el resumen del último ciclo terminado, o nil.
func (s *Service) UltimoResultado() *Resultado {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ultimo
}

// RunCycle ejecuta un ciclo completo. Un solo ciclo puede correr a la vez en
// este proceso; un pedido concurrente falla al instante con ErrCicloEnCurso.
func (s *Service) RunCycle(ctx context.Context) (*Resultado, error) {
	if !s.ocupado.CompareAndSwap(false, true) {
		return nil, ErrCicloEnCurso
	}
	defer s.ocupado.Store(false)

	inicio := time.Now()
	res, err := s.correr(ctx, inicio)
	if err != nil {
		res = &Resultado{Inicio: inicio, Duracion: time.Since(inicio).String(), Error: err.Error()}
	}

	s.mu.Lock()
	s.ultimo = res
	s.mu.Unlock()
	return res, err
}

func (s *Service) correr(ctx context.Context, inicio time.Time) (*Resultado, error) {
	watermark, err := s.config.UltimaFactura(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync: leer watermark: %w", err)
	}

	// Todo el I/O contra el ERP ocurre antes de abrir la transacción: una
	// falla acá aborta el ciclo sin estado parcial.
	pendientes, err := s.feed.FacturasPendientes(ctx, watermark)
	if err != nil {
		return nil, fmt.Errorf("sync: %w", err)
	}

	mapeos, err := s.areas.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync: cargar mapeos de área: %w", err)
	}

	builder := NewBuilder(NewResolver(mapeos))
	maxNroFact := watermark
	facturas := 0

	for _, cab := range pendientes {
		if cab.NroFact <= watermark {
			continue
		}
		detalle, err := s.feed.FacturaDetalle(ctx, cab.NroFact)
		if err != nil {
			return nil, fmt.Errorf("sync: %w", err)
		}
		builder.AgregarFactura(cab, detalle)
		if cab.NroFact > maxNroFact {
			maxNroFact = cab.NroFact
		}
		facturas++
	}

	lote := builder.Cerrar(time.Now())

	if err := s.persistir(ctx, lote, watermark, maxNroFact); err != nil {
		return nil, fmt.Errorf("sync: persistir lote: %w", err)
	}

	log.Info().
		Int("facturas", facturas).
		Int("ordenes", len(lote)).
		Int("watermark", maxNroFact).
		Dur("duracion", time.Since(inicio)).
		Msg("sync: ciclo completado")

	if len(lote) > 0 && s.notifier != nil {
		s.notifier.OrdenesCreadas(ctx, len(lote))
	}

	return &Resultado{
		OrdenesCreadas: len(lote),
		UltimaFactura:  maxNroFact,
		Inicio:         inicio,
		Duracion:       time.Since(inicio).String(),
	}, nil
}

// runTx ejecuta fn dentro de una transacción GORM cuando hay base, o llama
// fn(nil) directo cuando db es nil (modo test unitario).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// persistir escribe el lote entero y avanza el watermark en una sola
// transacción. Los procedimientos almacenados posteriores corren en un
// savepoint propio: su falla se absorbe sin voltear la transacción.
func (s *Service) persistir(ctx context.Context, lote []OrdenArmada, watermark, maxNroFact int) error {
	return runTx(ctx, s.ordenes.DB(), func(tx *gorm.DB) error {
		for i := range lote {
			oa := &lote[i]
			if err := s.ordenes.Create(ctx, tx, &oa.Orden); err != nil {
				return fmt.Errorf("orden %s: %w", oa.Orden.Secuencia, err)
			}

			for j := range oa.Archivos {
				oa.Archivos[j].OrdenID = oa.Orden.ID
			}
			if err := s.ordenes.CreateArchivos(ctx, tx, oa.Archivos); err != nil {
				return fmt.Errorf("archivos de %s: %w", oa.Orden.Secuencia, err)
			}
			if err := s.ordenes.UpdateCantArchivos(ctx, tx, oa.Orden.ID, len(oa.Archivos)); err != nil {
				return fmt.Errorf("cant archivos de %s: %w", oa.Orden.Secuencia, err)
			}

			for j := range oa.Referencias {
				oa.Referencias[j].OrdenID = oa.Orden.ID
			}
			if err := s.ordenes.CreateReferencias(ctx, tx, oa.Referencias); err != nil {
				return fmt.Errorf("referencias de %s: %w", oa.Orden.Secuencia, err)
			}

			for j := range oa.Servicios {
				oa.Servicios[j].OrdenID = oa.Orden.ID
			}
			if err := s.ordenes.CreateServicios(ctx, tx, oa.Servicios); err != nil {
				return fmt.Errorf("servicios de %s: %w", oa.Orden.Secuencia, err)
			}

			s.postProcesos(ctx, tx, oa)
		}

		if maxNroFact > watermark {
			if err := s.config.SetUltimaFactura(ctx, tx, maxNroFact); err != nil {
				return fmt.Errorf("avanzar watermark: %w", err)
			}
		}
		return nil
	})
}

// postProcesos invoca los procedimientos de predicción de próximo servicio y
// cálculo de fecha de entrega. Best-effort: cada uno corre en una
// transacción anidada (savepoint) y su error se loguea sin propagarse.
func (s *Service) postProcesos(ctx context.Context, tx *gorm.DB, oa *OrdenArmada) {
	if tx == nil {
		return
	}
	procs := []string{
		"SELECT predecir_proximo_servicio(?)",
		"SELECT calcular_fecha_entrega(?)",
	}
	for _, proc := range procs {
		proc := proc
		err := tx.Transaction(func(sp *gorm.DB) error {
			return sp.WithContext(ctx).Exec(proc, oa.Orden.ID).Error
		})
		if err != nil {
			log.Warn().
				Err(err).
				Str("orden", oa.Orden.Secuencia).
				Str("proc", proc).
				Msg("sync: post-proceso falló, se continúa")
		}
	}
}
