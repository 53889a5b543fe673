package filestore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchRutaLocal(t *testing.T) {
	dir := t.TempDir()
	ruta := filepath.Join(dir, "orden.pdf")
	require.NoError(t, os.WriteFile(ruta, []byte("%PDF contenido"), 0o644))

	s := New(t.TempDir(), "")
	data, nuevaRuta, err := s.Fetch(context.Background(), ruta)
	require.NoError(t, err)

	assert.Equal(t, []byte("%PDF contenido"), data)
	assert.Empty(t, nuevaRuta, "una ruta local no se relocaliza")
}

func TestFetchHTTPRelocaliza(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("contenido remoto"))
	}))
	defer srv.Close()

	base := t.TempDir()
	s := New(base, "")
	data, nuevaRuta, err := s.Fetch(context.Background(), srv.URL+"/archivos/lona.pdf")
	require.NoError(t, err)

	assert.Equal(t, []byte("contenido remoto"), data)
	require.NotEmpty(t, nuevaRuta)
	assert.Equal(t, filepath.Join(base, "descargas", "lona.pdf"), nuevaRuta)

	enDisco, err := os.ReadFile(nuevaRuta)
	require.NoError(t, err)
	assert.Equal(t, data, enDisco)
}

func TestFetchDrive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/abc123", r.URL.Path)
		assert.Equal(t, "media", r.URL.Query().Get("alt"))
		w.Write([]byte("bytes de drive"))
	}))
	defer srv.Close()

	s := New(t.TempDir(), srv.URL)
	data, nuevaRuta, err := s.Fetch(context.Background(), "drive:abc123")
	require.NoError(t, err)

	assert.Equal(t, []byte("bytes de drive"), data)
	assert.NotEmpty(t, nuevaRuta)
}

func TestFetchDriveSinConfiguracion(t *testing.T) {
	s := New(t.TempDir(), "")
	_, _, err := s.Fetch(context.Background(), "drive:abc123")
	assert.Error(t, err)
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := New(t.TempDir(), "")
	_, _, err := s.Fetch(context.Background(), srv.URL+"/no-existe.pdf")
	assert.Error(t, err)
}

func TestNombreDeRef(t *testing.T) {
	assert.Equal(t, "lona.pdf", nombreDeRef("https://cdn.example.com/a/lona.pdf?token=x"))
	assert.Equal(t, "abc123", nombreDeRef("drive:abc123"))
}
