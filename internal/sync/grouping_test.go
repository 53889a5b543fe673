package sync

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printflow/internal/erp"
	"printflow/internal/model"
)

func mapeosDePrueba() []model.AreaMapeo {
	return []model.AreaMapeo{
		{Grupo: "GIGANTOGRAFIA", AreaID: "gigantografia", Orden: 1, Posicion: 1},
		{Grupo: "DTF", AreaID: "dtf", Orden: 2, Posicion: 2},
		{Grupo: "BORDADO", AreaID: "bordado", Orden: 2, Posicion: 3},
	}
}

func facturaDePrueba(nroFact int, nroDoc string, lineas ...erp.Linea) (erp.FacturaPendiente, *erp.FacturaDetalle) {
	cab := erp.FacturaPendiente{
		NroFact:   nroFact,
		NroDoc:    nroDoc,
		Nombre:    "Cliente Demo",
		Fecha:     "2026-08-10",
		Trabajo:   "Cartelería local",
		Prioridad: "normal",
	}
	det := &erp.FacturaDetalle{NroDoc: nroDoc, Lineas: lineas}
	return cab, det
}

func lineaProduccion(grupo, desc, archivo string, copias int) erp.Linea {
	return erp.Linea{
		Grupo:         grupo,
		Descripcion:   desc,
		CantidadHaber: 6,
		Precio:        100,
		TotalLinea:    600,
		Sublineas: []erp.Sublinea{
			{Archivo: archivo, CantCopias: copias},
		},
	}
}

func TestBuilderEtiquetasDeSecuencia(t *testing.T) {
	b := NewBuilder(NewResolver(mapeosDePrueba()))

	cab, det := facturaDePrueba(100, "A-1234",
		lineaProduccion("DTF", "Transfer remeras", "remeras.pdf", 10),
		lineaProduccion("GIGANTOGRAFIA", "Lona frontera", "lona.pdf", 1),
		lineaProduccion("BORDADO", "Gorras bordadas", "gorras.pdf", 24),
	)
	b.AgregarFactura(cab, det)

	ordenes := b.Cerrar(time.Now())
	require.Len(t, ordenes, 3)

	// Prioridad de área primero, posición de carga como desempate.
	assert.Equal(t, "A-1234 (1/3)", ordenes[0].Orden.Secuencia)
	assert.Equal(t, "gigantografia", ordenes[0].Orden.AreaID)
	assert.Equal(t, "A-1234 (2/3)", ordenes[1].Orden.Secuencia)
	assert.Equal(t, "dtf", ordenes[1].Orden.AreaID)
	assert.Equal(t, "A-1234 (3/3)", ordenes[2].Orden.Secuencia)
	assert.Equal(t, "bordado", ordenes[2].Orden.AreaID)

	// El nombre de cada archivo queda prefijado por su secuencia.
	require.Len(t, ordenes[1].Archivos, 1)
	assert.Equal(t, "A-1234 (2/3) - Transfer remeras", ordenes[1].Archivos[0].Nombre)
}

func TestBuilderEtiquetasEstables(t *testing.T) {
	armar := func() []OrdenArmada {
		b := NewBuilder(NewResolver(mapeosDePrueba()))
		cab, det := facturaDePrueba(100, "A-1234",
			lineaProduccion("BORDADO", "Gorras", "gorras.pdf", 24),
			lineaProduccion("DTF", "Remeras", "remeras.pdf", 10),
		)
		b.AgregarFactura(cab, det)
		return b.Cerrar(time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC))
	}

	primera := armar()
	for i := 0; i < 5; i++ {
		otra := armar()
		require.Len(t, otra, len(primera))
		for j := range primera {
			assert.Equal(t, primera[j].Orden.Secuencia, otra[j].Orden.Secuencia)
			assert.Equal(t, primera[j].Orden.AreaID, otra[j].Orden.AreaID)
		}
	}
}

func TestBuilderDescartaAreasVacias(t *testing.T) {
	b := NewBuilder(NewResolver(mapeosDePrueba()))

	// La línea de DTF solo tiene una sublínea que no clasifica a nada:
	// archivo sin copias y sin palabra clave.
	cab, det := facturaDePrueba(101, "A-2000",
		lineaProduccion("GIGANTOGRAFIA", "Lona", "lona.pdf", 2),
		erp.Linea{
			Grupo:       "DTF",
			Descripcion: "Borrador",
			Sublineas:   []erp.Sublinea{{Archivo: "borrador.pdf"}},
		},
	)
	b.AgregarFactura(cab, det)

	ordenes := b.Cerrar(time.Now())
	require.Len(t, ordenes, 1)
	assert.Equal(t, "A-2000 (1/1)", ordenes[0].Orden.Secuencia)
}

func TestBuilderLineaSinMapeoSeSaltea(t *testing.T) {
	b := NewBuilder(NewResolver(mapeosDePrueba()))

	cab, det := facturaDePrueba(102, "A-3000",
		lineaProduccion("GRUPO-FANTASMA", "Misterio", "x.pdf", 1),
		lineaProduccion("DTF", "Remeras", "remeras.pdf", 5),
	)
	b.AgregarFactura(cab, det)

	ordenes := b.Cerrar(time.Now())
	require.Len(t, ordenes, 1)
	assert.Equal(t, "dtf", ordenes[0].Orden.AreaID)
}

func TestBuilderTintaUltimaLineaGana(t *testing.T) {
	b := NewBuilder(NewResolver(mapeosDePrueba()))

	l1 := lineaProduccion("DTF", "Remeras", "a.pdf", 1)
	l1.Observaciones = "Tinta: CMYK"
	l2 := lineaProduccion("DTF", "Buzos", "b.pdf", 1)
	l2.Observaciones = "Tinta: blanca|Retiro: mostrador"
	l3 := lineaProduccion("DTF", "Gorras", "c.pdf", 1)

	cab, det := facturaDePrueba(103, "A-4000", l1, l2, l3)
	b.AgregarFactura(cab, det)

	ordenes := b.Cerrar(time.Now())
	require.Len(t, ordenes, 1)
	require.NotNil(t, ordenes[0].Orden.Tinta)
	assert.Equal(t, "blanca", *ordenes[0].Orden.Tinta)
	require.NotNil(t, ordenes[0].Orden.Retiro)
	assert.Equal(t, "mostrador", *ordenes[0].Orden.Retiro)
}

func TestBuilderMaterialConsolidado(t *testing.T) {
	b := NewBuilder(NewResolver(mapeosDePrueba()))

	cab, det := facturaDePrueba(104, "A-5000",
		lineaProduccion("DTF", "Film DTF 60cm", "a.pdf", 1),
		lineaProduccion("DTF", "Film DTF 60cm", "b.pdf", 1), // repetido, no duplica
		lineaProduccion("DTF", "Tinta textil", "c.pdf", 1),
	)
	b.AgregarFactura(cab, det)

	ordenes := b.Cerrar(time.Now())
	require.Len(t, ordenes, 1)
	assert.Equal(t, "Film DTF 60cm, Tinta textil", ordenes[0].Orden.Material)
}

func TestBuilderMaterialSeTrunca(t *testing.T) {
	b := NewBuilder(NewResolver(mapeosDePrueba()))

	var lineas []erp.Linea
	for i := 0; i < 12; i++ {
		lineas = append(lineas, lineaProduccion("DTF",
			fmt.Sprintf("Material de descripción larga número %02d", i), "x.pdf", 1))
	}
	cab, det := facturaDePrueba(105, "A-6000", lineas...)
	b.AgregarFactura(cab, det)

	ordenes := b.Cerrar(time.Now())
	require.Len(t, ordenes, 1)
	material := ordenes[0].Orden.Material
	assert.LessOrEqual(t, len([]rune(material)), 200)
	assert.True(t, strings.HasPrefix(material, "Material de descripción larga número 00"))
}

func TestBuilderVarianteSoloServicios(t *testing.T) {
	b := NewBuilder(NewResolver(mapeosDePrueba()))

	cab, det := facturaDePrueba(106, "A-7000", erp.Linea{
		Grupo:         "DTF",
		Descripcion:   "Planchado",
		CantidadHaber: 4,
		Precio:        50,
		TotalLinea:    200,
		Sublineas:     []erp.Sublinea{{CantCopias: 4}},
	})
	b.AgregarFactura(cab, det)

	ordenes := b.Cerrar(time.Now())
	require.Len(t, ordenes, 1)
	assert.Equal(t, VarianteSoloServicios, ordenes[0].Orden.Variante)
	assert.Equal(t, 0, ordenes[0].Orden.CantArchivos)
	require.Len(t, ordenes[0].Servicios, 1)
	assert.Equal(t, "4", ordenes[0].Servicios[0].Cantidad.String())
}

func TestBuilderServicioSinDesglose(t *testing.T) {
	b := NewBuilder(NewResolver(mapeosDePrueba()))

	cab, det := facturaDePrueba(107, "A-8000", erp.Linea{
		Grupo:         "DTF",
		CodArt:        "SRV-9",
		Descripcion:   "Diseño express",
		CantidadHaber: 1,
		Precio:        1500,
		TotalLinea:    1500,
	})
	b.AgregarFactura(cab, det)

	ordenes := b.Cerrar(time.Now())
	require.Len(t, ordenes, 1)
	require.Len(t, ordenes[0].Servicios, 1)
	assert.Equal(t, "Sin desglose", ordenes[0].Servicios[0].Observacion)
	assert.Equal(t, "1500", ordenes[0].Servicios[0].Total.String())
}

func TestBuilderMetrosEstimadosRepartidos(t *testing.T) {
	b := NewBuilder(NewResolver(mapeosDePrueba()))

	cab, det := facturaDePrueba(108, "A-9000", erp.Linea{
		Grupo:         "GIGANTOGRAFIA",
		Descripcion:   "Lona",
		CantidadHaber: 9,
		Sublineas: []erp.Sublinea{
			{Archivo: "a.pdf", CantCopias: 1},
			{Archivo: "b.pdf", CantCopias: 1},
			{Archivo: "c.pdf", CantCopias: 1},
		},
	})
	b.AgregarFactura(cab, det)

	ordenes := b.Cerrar(time.Now())
	require.Len(t, ordenes, 1)
	require.Len(t, ordenes[0].Archivos, 3)
	for _, arch := range ordenes[0].Archivos {
		assert.InDelta(t, 3.0, arch.Metros, 1e-9)
		assert.False(t, arch.MedidaConfirmada)
	}
}

func TestBuilderNotaDelDocumento(t *testing.T) {
	t.Run("la observación del documento llega a cada orden", func(t *testing.T) {
		b := NewBuilder(NewResolver(mapeosDePrueba()))
		cab, det := facturaDePrueba(111, "C-1000",
			lineaProduccion("DTF", "Remeras", "a.pdf", 1),
			lineaProduccion("GIGANTOGRAFIA", "Lona", "b.pdf", 1),
		)
		cab.Observaciones = "Entregar embalado"
		b.AgregarFactura(cab, det)

		ordenes := b.Cerrar(time.Now())
		require.Len(t, ordenes, 2)
		for _, oa := range ordenes {
			assert.Equal(t, "Entregar embalado", oa.Orden.Notas)
		}
	})

	t.Run("el detalle tiene prioridad sobre la cabecera", func(t *testing.T) {
		b := NewBuilder(NewResolver(mapeosDePrueba()))
		cab, det := facturaDePrueba(112, "C-2000",
			lineaProduccion("DTF", "Remeras", "a.pdf", 1))
		cab.Observaciones = "nota de cabecera"
		det.Observaciones = "nota del detalle"
		b.AgregarFactura(cab, det)

		ordenes := b.Cerrar(time.Now())
		require.Len(t, ordenes, 1)
		assert.Equal(t, "nota del detalle", ordenes[0].Orden.Notas)
	})
}

func TestBuilderFechas(t *testing.T) {
	ahora := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	t.Run("fecha del documento más el plazo", func(t *testing.T) {
		b := NewBuilder(NewResolver(mapeosDePrueba()))
		cab, det := facturaDePrueba(109, "B-1000",
			lineaProduccion("DTF", "Remeras", "a.pdf", 1))
		b.AgregarFactura(cab, det)

		ordenes := b.Cerrar(ahora)
		require.Len(t, ordenes, 1)
		assert.Equal(t, time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC), ordenes[0].Orden.FechaIngreso)
		assert.Equal(t, time.Date(2026, 8, 13, 0, 0, 0, 0, time.UTC), ordenes[0].Orden.FechaEntrega)
	})

	t.Run("fecha ilegible cae en la hora del ciclo", func(t *testing.T) {
		b := NewBuilder(NewResolver(mapeosDePrueba()))
		cab, det := facturaDePrueba(110, "B-2000",
			lineaProduccion("DTF", "Remeras", "a.pdf", 1))
		cab.Fecha = "10/08/2026"
		b.AgregarFactura(cab, det)

		ordenes := b.Cerrar(ahora)
		require.Len(t, ordenes, 1)
		assert.Equal(t, ahora, ordenes[0].Orden.FechaIngreso)
	})
}

func TestTruncar(t *testing.T) {
	// No parte un carácter multibyte en el límite.
	s := strings.Repeat("ñ", 10)
	assert.Equal(t, strings.Repeat("ñ", 4), truncar(s, 4))
	assert.Equal(t, s, truncar(s, 10))
}
