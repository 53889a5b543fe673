package sync

// grouping.go
// Agregación en dos niveles: documento del ERP → área de producción.
// El Builder acumula todo el lote en memoria y recién al cerrar materializa
// las órdenes con sus registros hijos, de modo que la persistencia pueda ser
// todo-o-nada en una sola transacción.

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"printflow/internal/erp"
	"printflow/internal/model"
)

const (
	// maxMaterial limita el texto consolidado de materiales de la orden.
	maxMaterial = 200
	// diasEntrega es el plazo fijo entre ingreso y entrega estimada.
	diasEntrega = 3

	VarianteEstandar      = "Estándar"
	VarianteSoloServicios = "Solo Servicios"
)

// OrdenArmada es una orden lista para persistir junto con sus hijos.
type OrdenArmada struct {
	Orden       model.Orden
	Archivos    []model.ArchivoProduccion
	Referencias []model.ItemReferencia
	Servicios   []model.ServicioExtra
}

// areaAgregada acumula los ítems de un (documento, área).
type areaAgregada struct {
	mapeo         model.AreaMapeo
	materiales    []string
	materialVisto map[string]bool
	tinta         *string
	retiro        *string
	archivos      []model.ArchivoProduccion
	referencias   []model.ItemReferencia
	servicios     []model.ServicioExtra
}

func (a *areaAgregada) vacia() bool {
	return len(a.archivos) == 0 && len(a.referencias) == 0 && len(a.servicios) == 0
}

// documentoAgregado acumula las áreas de un documento del ERP.
type documentoAgregado struct {
	nroDoc    string
	cliente   string
	trabajo   string
	prioridad string
	nota      string
	fecha     time.Time
	areas     map[string]*areaAgregada
}

// Builder arma los agregados de un ciclo de sync. No se comparte entre
// ciclos: cada corrida parte de un Builder nuevo.
type Builder struct {
	resolver *Resolver
	docs     map[string]*documentoAgregado
	docOrden []string // orden de primera aparición, para salida determinista
}

func NewBuilder(resolver *Resolver) *Builder {
	return &Builder{
		resolver: resolver,
		docs:     make(map[string]*documentoAgregado),
	}
}

// AgregarFactura incorpora las líneas de una factura detallada al lote.
// Las líneas cuyo grupo no resuelve a un área se saltean y se loguean.
func (b *Builder) AgregarFactura(cab erp.FacturaPendiente, det *erp.FacturaDetalle) {
	doc := b.docPara(cab, det)

	for _, linea := range det.Lineas {
		mapeo, ok := b.resolver.Resolver(linea.Grupo, linea.CodStock)
		if !ok {
			log.Warn().
				Int("nro_fact", cab.NroFact).
				Str("nro_doc", doc.nroDoc).
				Str("grupo", linea.Grupo).
				Str("cod_stock", linea.CodStock).
				Msg("sync: grupo sin mapeo de área, línea descartada")
			continue
		}

		aa := doc.areaPara(mapeo)
		aa.agregarMaterial(linea.Descripcion)

		notas := NotasDeLinea(linea)
		if t := ExtraerTinta(notas); t != nil {
			aa.tinta = t // última línea gana
		}
		if r := ExtraerRetiro(notas); r != nil {
			aa.retiro = r
		}

		b.agregarItems(aa, linea)
	}
}

func (b *Builder) docPara(cab erp.FacturaPendiente, det *erp.FacturaDetalle) *documentoAgregado {
	nroDoc := strings.TrimSpace(det.NroDoc)
	if nroDoc == "" {
		nroDoc = strings.TrimSpace(cab.NroDoc)
	}
	if d, ok := b.docs[nroDoc]; ok {
		return d
	}
	nota := strings.TrimSpace(det.Observaciones)
	if nota == "" {
		nota = strings.TrimSpace(cab.Observaciones)
	}
	d := &documentoAgregado{
		nroDoc:    nroDoc,
		cliente:   cab.Nombre,
		trabajo:   cab.Trabajo,
		prioridad: cab.Prioridad,
		nota:      nota,
		fecha:     parseFecha(cab.Fecha),
		areas:     make(map[string]*areaAgregada),
	}
	b.docs[nroDoc] = d
	b.docOrden = append(b.docOrden, nroDoc)
	return d
}

func (d *documentoAgregado) areaPara(mapeo model.AreaMapeo) *areaAgregada {
	if a, ok := d.areas[mapeo.AreaID]; ok {
		return a
	}
	a := &areaAgregada{mapeo: mapeo, materialVisto: make(map[string]bool)}
	d.areas[mapeo.AreaID] = a
	return a
}

func (a *areaAgregada) agregarMaterial(nombre string) {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" || a.materialVisto[nombre] {
		return
	}
	a.materialVisto[nombre] = true
	a.materiales = append(a.materiales, nombre)
}

// agregarItems clasifica las sublíneas de la línea y apila los registros en
// el agregado del área. Una línea sin sublíneas con importe positivo es un
// servicio extra sin desglose.
func (b *Builder) agregarItems(aa *areaAgregada, linea erp.Linea) {
	if len(linea.Sublineas) == 0 {
		if linea.TotalLinea > 0 {
			aa.servicios = append(aa.servicios, model.ServicioExtra{
				CodArt:      linea.CodArt,
				CodStock:    linea.CodStock,
				Descripcion: linea.Descripcion,
				Cantidad:    decimal.NewFromFloat(linea.CantidadHaber),
				Precio:      decimal.NewFromFloat(linea.Precio),
				Total:       decimal.NewFromFloat(linea.TotalLinea),
				Observacion: "Sin desglose",
			})
		}
		return
	}

	// Reparto parejo de la cantidad de la línea entre sus sublíneas; la
	// medición real la confirma después el worker de medición.
	metrosEstimados := linea.CantidadHaber / float64(len(linea.Sublineas))

	for _, sub := range linea.Sublineas {
		switch Clasificar(sub) {
		case ClaseReferencia:
			aa.referencias = append(aa.referencias, model.ItemReferencia{
				Tipo:    TipoReferencia(sub.Notas),
				Archivo: sub.Archivo,
				Nombre:  linea.Descripcion,
				Notas:   sub.Notas,
			})
		case ClaseServicio:
			aa.servicios = append(aa.servicios, model.ServicioExtra{
				CodArt:      linea.CodArt,
				CodStock:    linea.CodStock,
				Descripcion: linea.Descripcion,
				Cantidad:    decimal.NewFromInt(int64(sub.CantCopias)),
				Precio:      decimal.NewFromFloat(linea.Precio),
				Total:       decimal.NewFromFloat(linea.TotalLinea),
				Observacion: sub.Notas,
			})
		case ClaseProduccion:
			aa.archivos = append(aa.archivos, model.ArchivoProduccion{
				Nombre:     linea.Descripcion,
				Archivo:    sub.Archivo,
				CantCopias: sub.CantCopias,
				Metros:     metrosEstimados,
				CodStock:   linea.CodStock,
				Notas:      sub.Notas,
				Estado:     "pendiente",
			})
		}
	}
}

// Cerrar materializa las órdenes del lote. Por documento: se descartan las
// áreas sin ítems, las restantes se ordenan por prioridad de área (empates
// por posición de carga del mapeo) y se etiquetan "<doc> (i/K)".
func (b *Builder) Cerrar(ahora time.Time) []OrdenArmada {
	var salida []OrdenArmada

	for _, nroDoc := range b.docOrden {
		doc := b.docs[nroDoc]

		areas := make([]*areaAgregada, 0, len(doc.areas))
		for _, a := range doc.areas {
			if !a.vacia() {
				areas = append(areas, a)
			}
		}
		sort.SliceStable(areas, func(i, j int) bool {
			if areas[i].mapeo.Orden != areas[j].mapeo.Orden {
				return areas[i].mapeo.Orden < areas[j].mapeo.Orden
			}
			return areas[i].mapeo.Posicion < areas[j].mapeo.Posicion
		})

		total := len(areas)
		for i, aa := range areas {
			secuencia := fmt.Sprintf("%s (%d/%d)", doc.nroDoc, i+1, total)
			salida = append(salida, b.armarOrden(doc, aa, secuencia, ahora))
		}
	}
	return salida
}

func (b *Builder) armarOrden(doc *documentoAgregado, aa *areaAgregada, secuencia string, ahora time.Time) OrdenArmada {
	variante := VarianteEstandar
	if len(aa.archivos) == 0 && len(aa.servicios) > 0 {
		variante = VarianteSoloServicios
	}

	fechaIngreso := doc.fecha
	if fechaIngreso.IsZero() {
		fechaIngreso = ahora
	}

	oa := OrdenArmada{
		Orden: model.Orden{
			Secuencia:    secuencia,
			NroDoc:       doc.nroDoc,
			AreaID:       aa.mapeo.AreaID,
			Cliente:      doc.cliente,
			Trabajo:      doc.trabajo,
			Prioridad:    doc.prioridad,
			Material:     truncar(strings.Join(aa.materiales, ", "), maxMaterial),
			Variante:     variante,
			Estado:       "pendiente",
			Tinta:        aa.tinta,
			Retiro:       aa.retiro,
			Notas:        doc.nota,
			FechaIngreso: fechaIngreso,
			FechaEntrega: fechaIngreso.AddDate(0, 0, diasEntrega),
			CantArchivos: len(aa.archivos),
			Magnitud:     "0",
		},
		Referencias: aa.referencias,
		Servicios:   aa.servicios,
	}

	for _, arch := range aa.archivos {
		arch.Nombre = secuencia + " - " + arch.Nombre
		arch.SubidoEn = ahora
		oa.Archivos = append(oa.Archivos, arch)
	}
	return oa
}

func parseFecha(s string) time.Time {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

// truncar corta a max runas para no partir un carácter multibyte en el
// límite de la columna.
func truncar(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
