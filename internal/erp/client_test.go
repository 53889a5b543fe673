package erp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacturasPendientes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pedidos/todos", r.URL.Path)
		assert.Equal(t, "1500", r.URL.Query().Get("NroFact"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"NroFact": 1501, "NroDoc": "A-9001", "Nombre": "Cliente Uno", "Fecha": "2026-08-20", "Prioridad": "alta"},
			{"NroFact": 1502, "NroDoc": "A-9002", "Nombre": "Cliente Dos", "Fecha": "2026-08-21", "Prioridad": "normal"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	facturas, err := c.FacturasPendientes(context.Background(), 1500)
	require.NoError(t, err)

	require.Len(t, facturas, 2)
	assert.Equal(t, 1501, facturas[0].NroFact)
	assert.Equal(t, "A-9001", facturas[0].NroDoc)
	assert.Equal(t, "alta", facturas[0].Prioridad)
}

func TestFacturaDetalle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pedidos/1501/con_sublineas", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"NroDoc": "A-9001",
			"Lineas": [{
				"Grupo": "DTF",
				"CodStock": "DTF-001",
				"Descripcion": "Transfer remeras",
				"CantidadHaber": 6,
				"TotalLinea": 600,
				"Sublineas": [
					{"Sublinea_id": 1, "Archivo": "remeras.pdf", "CantCopias": 3, "Notas": "Tinta: CMYK"}
				]
			}]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	det, err := c.FacturaDetalle(context.Background(), 1501)
	require.NoError(t, err)

	assert.Equal(t, "A-9001", det.NroDoc)
	require.Len(t, det.Lineas, 1)
	require.Len(t, det.Lineas[0].Sublineas, 1)
	assert.Equal(t, 3, det.Lineas[0].Sublineas[0].CantCopias)
}

func TestClientErrores(t *testing.T) {
	t.Run("status no OK", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, 5*time.Second)
		_, err := c.FacturasPendientes(context.Background(), 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, 50*time.Millisecond)
		_, err := c.FacturaDetalle(context.Background(), 1)
		require.Error(t, err)
	})

	t.Run("cuerpo ilegible", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>no soy json</html>"))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, 5*time.Second)
		_, err := c.FacturasPendientes(context.Background(), 0)
		require.Error(t, err)
	})
}
