package sync

// classifier.go
// Reglas de clasificación sobre los campos de texto libre del ERP.
// Las notas de una línea y sus sublíneas se concatenan con "|" — el ERP
// garantiza que el delimitador no aparece dentro de un valor legítimo.

import (
	"regexp"
	"strings"

	"printflow/internal/erp"
	"printflow/internal/model"
)

// DelimNotas separa los campos de nota concatenados antes de aplicar las
// reglas de extracción.
const DelimNotas = "|"

// Reglas de extracción, en orden. La primera que matchea gana.
var (
	reTinta      = regexp.MustCompile(`(?i)tinta:\s*([^|]+)`)
	reTipoImpres = regexp.MustCompile(`(?i)tipo de impresi[oó]n:\s*([^|]+)`)
	reRetiro     = regexp.MustCompile(`(?i)retiro:\s*([^|]+)`)
)

// palabrasReferencia marca una sublínea con archivo como adjunto de
// referencia en vez de trabajo de producción.
var palabrasReferencia = []string{"boceto", "logo", "guia", "corte", "bordado"}

// ExtraerTinta busca "Tinta:" y, en su defecto, "Tipo de impresión:" en el
// texto concatenado de notas. Devuelve nil cuando ninguna regla matchea,
// para distinguir "sin especificar" de un valor vacío explícito.
func ExtraerTinta(notas string) *string {
	for _, re := range []*regexp.Regexp{reTinta, reTipoImpres} {
		if m := re.FindStringSubmatch(notas); m != nil {
			v := strings.TrimSpace(m[1])
			return &v
		}
	}
	return nil
}

// ExtraerRetiro busca "Retiro:" en el texto concatenado de notas. Sin regla
// de respaldo: ausente devuelve nil.
func ExtraerRetiro(notas string) *string {
	if m := reRetiro.FindStringSubmatch(notas); m != nil {
		v := strings.TrimSpace(m[1])
		return &v
	}
	return nil
}

// NotasDeLinea arma el texto sobre el que corren las reglas: observación de
// la línea más las notas de todas sus sublíneas, unidas por el delimitador.
func NotasDeLinea(l erp.Linea) string {
	partes := make([]string, 0, len(l.Sublineas)+1)
	partes = append(partes, l.Observaciones)
	for _, s := range l.Sublineas {
		partes = append(partes, s.Notas)
	}
	return strings.Join(partes, DelimNotas)
}

// ClaseSublinea es el resultado de clasificar una sublínea.
type ClaseSublinea int

const (
	// ClaseNada: la sublínea no produce ningún registro.
	ClaseNada ClaseSublinea = iota
	// ClaseReferencia: adjunto no imprimible (boceto, logo, guía…).
	ClaseReferencia
	// ClaseServicio: ítem facturable sin archivo.
	ClaseServicio
	// ClaseProduccion: archivo imprimible con copias.
	ClaseProduccion
)

// Clasificar aplica la precedencia de clasificación de sublíneas:
//  1. archivo + palabra clave de referencia en las notas → referencia
//  2. sin archivo y copias > 0 → servicio extra
//  3. archivo y copias > 0 → producción
//  4. resto → nada
func Clasificar(s erp.Sublinea) ClaseSublinea {
	tieneArchivo := strings.TrimSpace(s.Archivo) != ""

	if tieneArchivo && contieneReferencia(s.Notas) {
		return ClaseReferencia
	}
	if !tieneArchivo && s.CantCopias > 0 {
		return ClaseServicio
	}
	if tieneArchivo && s.CantCopias > 0 {
		return ClaseProduccion
	}
	return ClaseNada
}

func contieneReferencia(notas string) bool {
	bajo := strings.ToLower(notas)
	for _, p := range palabrasReferencia {
		if strings.Contains(bajo, p) {
			return true
		}
	}
	return false
}

// TipoReferencia sub-clasifica un adjunto por prioridad de palabra clave:
// "boceto" gana sobre "logo", que gana sobre "corte"; el resto (guía,
// bordado) cae en el tipo genérico.
func TipoReferencia(notas string) string {
	bajo := strings.ToLower(notas)
	switch {
	case strings.Contains(bajo, "boceto"):
		return model.RefBoceto
	case strings.Contains(bajo, "logo"):
		return model.RefLogo
	case strings.Contains(bajo, "corte"):
		return model.RefCorte
	default:
		return model.RefReferencia
	}
}
