// Package measure extrae la geometría física de los archivos de producción:
// ancho y alto en metros a partir de la caja de página de un PDF o de los
// píxeles y DPI de una imagen rasterizada.
package measure

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/ledongthuc/pdf"
)

const (
	puntosPorPulgada = 72.0
	cmPorPulgada     = 2.54
	// dpiPorDefecto se asume cuando la imagen no trae metadatos de densidad.
	dpiPorDefecto = 72.0
)

// Tipos de archivo detectados.
const (
	TipoPDF         = "pdf"
	TipoImagen      = "imagen"
	TipoDesconocido = "desconocido"
)

// Medida es la geometría física de un archivo.
type Medida struct {
	AnchoM float64
	AltoM  float64
	Tipo   string
}

// ErrFormatoDesconocido indica que el contenido no es PDF ni una imagen
// decodificable.
var ErrFormatoDesconocido = errors.New("measure: formato de archivo desconocido")

// Medir calcula la geometría de un archivo a partir de sus bytes.
func Medir(data []byte) (*Medida, error) {
	if len(data) >= 4 && bytes.HasPrefix(data, []byte("%PDF")) {
		return medirPDF(data)
	}
	if m, err := medirRaster(data); err == nil {
		return m, nil
	}
	return nil, ErrFormatoDesconocido
}

// PuntosAMetros convierte puntos PostScript (1/72") a metros.
func PuntosAMetros(pts float64) float64 {
	return pts * cmPorPulgada / puntosPorPulgada / 100.0
}

// PixelesAMetros convierte píxeles a metros según la densidad.
func PixelesAMetros(px int, dpi float64) float64 {
	if dpi <= 0 {
		dpi = dpiPorDefecto
	}
	return float64(px) / dpi * cmPorPulgada / 100.0
}

// medirPDF lee la caja de la primera página (en puntos) y la convierte.
// El parser entra en pánico ante estructuras malformadas; acá se convierte en
// error para que un archivo corrupto no voltee el worker.
func medirPDF(data []byte) (m *Medida, err error) {
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("measure: pdf malformado: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("measure: abrir pdf: %w", err)
	}
	if reader.NumPage() < 1 {
		return nil, errors.New("measure: pdf sin páginas")
	}

	page := reader.Page(1)
	if page.V.IsNull() {
		return nil, errors.New("measure: pdf con primera página inválida")
	}

	box := mediaBox(page)
	if box.IsNull() || box.Len() < 4 {
		return nil, errors.New("measure: pdf sin MediaBox")
	}

	x1, y1 := box.Index(0).Float64(), box.Index(1).Float64()
	x2, y2 := box.Index(2).Float64(), box.Index(3).Float64()

	anchoPts := x2 - x1
	altoPts := y2 - y1
	if anchoPts <= 0 || altoPts <= 0 {
		return nil, errors.New("measure: MediaBox degenerada")
	}

	return &Medida{
		AnchoM: PuntosAMetros(anchoPts),
		AltoM:  PuntosAMetros(altoPts),
		Tipo:   TipoPDF,
	}, nil
}

// mediaBox busca la MediaBox en la página y, si es heredada, sube por la
// cadena de nodos Parent (profundidad acotada por si el árbol trae ciclos).
func mediaBox(page pdf.Page) pdf.Value {
	node := page.V
	for depth := 0; depth < 16 && !node.IsNull(); depth++ {
		if box := node.Key("MediaBox"); !box.IsNull() {
			return box
		}
		node = node.Key("Parent")
	}
	return pdf.Value{}
}

// medirRaster decodifica las dimensiones en píxeles y lee los metadatos de
// densidad del contenedor (pHYs en PNG, JFIF en JPEG; 72 DPI si faltan).
func medirRaster(data []byte) (*Medida, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("measure: decodificar imagen: %w", err)
	}

	dpi := dpiDeMetadatos(data)
	return &Medida{
		AnchoM: PixelesAMetros(cfg.Width, dpi),
		AltoM:  PixelesAMetros(cfg.Height, dpi),
		Tipo:   TipoImagen,
	}, nil
}

var firmaPNG = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// dpiDeMetadatos extrae la densidad declarada del archivo. El estándar de
// imagen de Go no expone estos campos, así que se leen directo del
// contenedor.
func dpiDeMetadatos(data []byte) float64 {
	switch {
	case bytes.HasPrefix(data, firmaPNG):
		return dpiPNG(data)
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		return dpiJPEG(data)
	default:
		return dpiPorDefecto
	}
}

// dpiPNG recorre los chunks hasta pHYs: píxeles por metro cuando la unidad
// es 1.
func dpiPNG(data []byte) float64 {
	pos := len(firmaPNG)
	for pos+12 <= len(data) {
		largo := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		tipo := string(data[pos+4 : pos+8])
		if tipo == "pHYs" && largo >= 9 && pos+8+9 <= len(data) {
			ppuX := binary.BigEndian.Uint32(data[pos+8 : pos+12])
			unidad := data[pos+16]
			if unidad == 1 && ppuX > 0 {
				// píxeles por metro → píxeles por pulgada
				return float64(ppuX) * 0.0254
			}
			return dpiPorDefecto
		}
		if tipo == "IDAT" || tipo == "IEND" {
			break
		}
		pos += 12 + largo
	}
	return dpiPorDefecto
}

// dpiJPEG lee la densidad del segmento APP0/JFIF.
func dpiJPEG(data []byte) float64 {
	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			break
		}
		marcador := data[pos+1]
		if marcador == 0xD9 || marcador == 0xDA { // EOI / SOS
			break
		}
		largo := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if marcador == 0xE0 && largo >= 16 && pos+4+largo-2 <= len(data) {
			seg := data[pos+4 : pos+2+largo]
			if bytes.HasPrefix(seg, []byte("JFIF\x00")) {
				unidad := seg[7]
				densX := float64(binary.BigEndian.Uint16(seg[8:10]))
				switch {
				case unidad == 1 && densX > 0: // puntos por pulgada
					return densX
				case unidad == 2 && densX > 0: // puntos por centímetro
					return densX * cmPorPulgada
				}
			}
			return dpiPorDefecto
		}
		pos += 2 + largo
	}
	return dpiPorDefecto
}
