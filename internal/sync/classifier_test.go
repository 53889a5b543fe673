package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printflow/internal/erp"
	"printflow/internal/model"
)

func TestExtraerTinta(t *testing.T) {
	t.Run("regla primaria Tinta:", func(t *testing.T) {
		got := ExtraerTinta("Material rollo|Tinta: CMYK pigmentada |otra nota")
		require.NotNil(t, got)
		assert.Equal(t, "CMYK pigmentada", *got)
	})

	t.Run("fallback Tipo de impresión:", func(t *testing.T) {
		got := ExtraerTinta("Tipo de impresión: sublimación|Retiro: mostrador")
		require.NotNil(t, got)
		assert.Equal(t, "sublimación", *got)
	})

	t.Run("fallback sin acento", func(t *testing.T) {
		got := ExtraerTinta("tipo de impresion: DTF")
		require.NotNil(t, got)
		assert.Equal(t, "DTF", *got)
	})

	t.Run("la primaria gana sobre el fallback", func(t *testing.T) {
		got := ExtraerTinta("Tipo de impresión: laser|Tinta: blanca")
		require.NotNil(t, got)
		assert.Equal(t, "blanca", *got)
	})

	t.Run("case-insensitive", func(t *testing.T) {
		got := ExtraerTinta("TINTA: eco solvente")
		require.NotNil(t, got)
		assert.Equal(t, "eco solvente", *got)
	})

	t.Run("ausente devuelve nil, no vacío", func(t *testing.T) {
		assert.Nil(t, ExtraerTinta("sin especificación de nada"))
	})

	t.Run("el valor corta en el delimitador", func(t *testing.T) {
		got := ExtraerTinta("Tinta: CMYK|Retiro: envío")
		require.NotNil(t, got)
		assert.Equal(t, "CMYK", *got)
	})
}

func TestExtraerRetiro(t *testing.T) {
	got := ExtraerRetiro("nota|retiro: En mostrador ")
	require.NotNil(t, got)
	assert.Equal(t, "En mostrador", *got)

	// Sin regla de respaldo: ausente es nil.
	assert.Nil(t, ExtraerRetiro("Entrega: mañana"))
}

func TestNotasDeLinea(t *testing.T) {
	l := erp.Linea{
		Observaciones: "Tinta: CMYK",
		Sublineas: []erp.Sublinea{
			{Notas: "primera"},
			{Notas: "Retiro: envío"},
		},
	}
	assert.Equal(t, "Tinta: CMYK|primera|Retiro: envío", NotasDeLinea(l))
}

func TestClasificar(t *testing.T) {
	cases := []struct {
		nombre string
		sub    erp.Sublinea
		want   ClaseSublinea
	}{
		{"archivo + palabra clave → referencia",
			erp.Sublinea{Archivo: "logo.png", CantCopias: 1, Notas: "logo del cliente"}, ClaseReferencia},
		{"sin archivo y copias > 0 → servicio",
			erp.Sublinea{CantCopias: 3}, ClaseServicio},
		{"archivo y copias > 0 → producción",
			erp.Sublinea{Archivo: "banner.pdf", CantCopias: 3}, ClaseProduccion},
		{"archivo sin copias y sin palabra clave → nada",
			erp.Sublinea{Archivo: "banner.pdf"}, ClaseNada},
		{"sin archivo y sin copias → nada",
			erp.Sublinea{Notas: "apunte suelto"}, ClaseNada},
		{"palabra clave sin archivo no es referencia",
			erp.Sublinea{CantCopias: 2, Notas: "boceto pendiente"}, ClaseServicio},
	}
	for _, tc := range cases {
		t.Run(tc.nombre, func(t *testing.T) {
			assert.Equal(t, tc.want, Clasificar(tc.sub))
		})
	}
}

func TestTipoReferencia(t *testing.T) {
	// boceto gana aunque haya otras palabras clave presentes
	assert.Equal(t, model.RefBoceto, TipoReferencia("logo y boceto de corte"))
	assert.Equal(t, model.RefLogo, TipoReferencia("LOGO vectorizado con corte"))
	assert.Equal(t, model.RefCorte, TipoReferencia("guía de corte"))
	assert.Equal(t, model.RefReferencia, TipoReferencia("guia de bordado"))
	assert.Equal(t, model.RefReferencia, TipoReferencia("bordado frente"))
}
