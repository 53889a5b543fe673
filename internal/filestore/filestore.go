// Package filestore resuelve descriptores de ubicación de archivos: rutas
// locales, URLs HTTP y referencias de drive ("drive:<id>"). Los archivos
// remotos se bajan y quedan relocalizados en el almacenamiento local.
package filestore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PrefijoDrive marca una referencia a la unidad en la nube.
const PrefijoDrive = "drive:"

// Store materializa descriptores de ubicación en bytes y guarda archivos
// nuevos bajo basePath/<area>/.
type Store struct {
	basePath    string
	driveAPIURL string
	httpClient  *http.Client
}

func New(basePath, driveAPIURL string) *Store {
	return &Store{
		basePath:    basePath,
		driveAPIURL: driveAPIURL,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Fetch devuelve los bytes del archivo referenciado. Cuando la referencia es
// remota (HTTP o drive) el contenido se guarda localmente y nuevaRuta trae
// la ruta relocalizada; para rutas locales nuevaRuta queda vacía.
func (s *Store) Fetch(ctx context.Context, ref string) (data []byte, nuevaRuta string, err error) {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		data, err = s.descargar(ctx, ref)
		if err != nil {
			return nil, "", err
		}
	case strings.HasPrefix(ref, PrefijoDrive):
		id := strings.TrimPrefix(ref, PrefijoDrive)
		if s.driveAPIURL == "" {
			return nil, "", fmt.Errorf("filestore: referencia de drive sin DRIVE_API_URL configurada: %s", ref)
		}
		data, err = s.descargar(ctx, fmt.Sprintf("%s/files/%s?alt=media", s.driveAPIURL, id))
		if err != nil {
			return nil, "", err
		}
	default:
		data, err = os.ReadFile(ref)
		if err != nil {
			return nil, "", fmt.Errorf("filestore: leer %s: %w", ref, err)
		}
		return data, "", nil
	}

	nuevaRuta, err = s.Save(data, "descargas", nombreDeRef(ref))
	if err != nil {
		// La descarga sirvió igual; la relocalización es oportunista.
		return data, "", nil
	}
	return data, nuevaRuta, nil
}

// Save escribe data bajo basePath/<area>/<nombre> y devuelve la ruta final.
func (s *Store) Save(data []byte, area, nombre string) (string, error) {
	dir := filepath.Join(s.basePath, area)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("filestore: crear directorio %s: %w", dir, err)
	}
	ruta := filepath.Join(dir, nombre)
	if err := os.WriteFile(ruta, data, 0o644); err != nil {
		return "", fmt.Errorf("filestore: escribir %s: %w", ruta, err)
	}
	return ruta, nil
}

func (s *Store) descargar(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("filestore: crear request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("filestore: descargar %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("filestore: %s devolvió %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// nombreDeRef deriva un nombre de archivo local razonable de la referencia.
func nombreDeRef(ref string) string {
	ref = strings.TrimPrefix(ref, PrefijoDrive)
	if i := strings.Index(ref, "?"); i >= 0 {
		ref = ref[:i]
	}
	base := filepath.Base(ref)
	if base == "." || base == "/" || base == "" {
		return fmt.Sprintf("archivo_%d", time.Now().UnixNano())
	}
	return base
}
