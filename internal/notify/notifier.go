// Package notify publica eventos de cambio de órdenes por Redis Pub/Sub.
// La capa de UI (fuera de este servicio) está suscripta al canal y refresca
// los tableros al recibirlos.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// CanalOrdenes es el canal Pub/Sub de eventos de órdenes.
const CanalOrdenes = "ordenes:eventos"

// Evento es el mensaje publicado en CanalOrdenes.
type Evento struct {
	Tipo    string `json:"tipo"` // "creadas" | "actualizada" | "actualizadas"
	OrdenID string `json:"orden_id,omitempty"`
	Cuenta  int    `json:"cuenta,omitempty"`
	Emitido string `json:"emitido"` // ISO 8601
}

// Notifier publica eventos. Los errores de publicación se loguean y no se
// propagan: la notificación nunca hace fallar la operación que la originó.
type Notifier struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Notifier { return &Notifier{rdb: rdb} }

// OrdenesCreadas anuncia que un ciclo de sync creó `cuenta` órdenes.
func (n *Notifier) OrdenesCreadas(ctx context.Context, cuenta int) {
	n.publicar(ctx, Evento{Tipo: "creadas", Cuenta: cuenta})
}

// OrdenActualizada anuncia que una orden cambió (medición confirmada).
func (n *Notifier) OrdenActualizada(ctx context.Context, ordenID string) {
	n.publicar(ctx, Evento{Tipo: "actualizada", OrdenID: ordenID})
}

// OrdenesActualizadas cierra un lote de medición con el total de órdenes
// tocadas.
func (n *Notifier) OrdenesActualizadas(ctx context.Context, cuenta int) {
	n.publicar(ctx, Evento{Tipo: "actualizadas", Cuenta: cuenta})
}

func (n *Notifier) publicar(ctx context.Context, ev Evento) {
	ev.Emitido = time.Now().UTC().Format(time.RFC3339)
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("notify: marshal evento")
		return
	}
	if err := n.rdb.Publish(ctx, CanalOrdenes, data).Err(); err != nil {
		log.Error().Err(err).Str("tipo", ev.Tipo).Msg("notify: publicar evento")
	}
}
