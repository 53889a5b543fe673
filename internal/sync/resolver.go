package sync

import (
	"strings"

	"printflow/internal/model"
)

// Resolver resuelve el código de grupo del ERP a un mapeo de área. La
// búsqueda primaria es por grupo (match exacto sobre el código recortado);
// si falla y la línea trae código de stock, se intenta por ese código.
// Una línea sin resolución se descarta del ingreso — es un hueco de calidad
// de datos, no un error del ciclo.
type Resolver struct {
	porGrupo map[string]model.AreaMapeo
	porStock map[string]model.AreaMapeo
}

// NewResolver indexa los mapeos cargados de la tabla. El orden del slice es
// el orden de carga (posición), que desempata prioridades repetidas.
func NewResolver(mapeos []model.AreaMapeo) *Resolver {
	r := &Resolver{
		porGrupo: make(map[string]model.AreaMapeo, len(mapeos)),
		porStock: make(map[string]model.AreaMapeo),
	}
	for _, m := range mapeos {
		r.porGrupo[strings.TrimSpace(m.Grupo)] = m
		if m.CodStock != nil && strings.TrimSpace(*m.CodStock) != "" {
			r.porStock[strings.TrimSpace(*m.CodStock)] = m
		}
	}
	return r
}

// Resolver devuelve el mapeo del área y true, o false cuando ni el grupo ni
// el código de stock están mapeados.
func (r *Resolver) Resolver(grupo, codStock string) (model.AreaMapeo, bool) {
	if m, ok := r.porGrupo[strings.TrimSpace(grupo)]; ok {
		return m, true
	}
	if cs := strings.TrimSpace(codStock); cs != "" {
		if m, ok := r.porStock[cs]; ok {
			return m, true
		}
	}
	return model.AreaMapeo{}, false
}
