// Package erp implements the HTTP client for the external ERP invoice feed.
// The ERP is an untrusted dependency: every call carries a bounded timeout and
// a failure aborts the whole sync cycle before any database write.
package erp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// FacturaPendiente is one raw invoice header from the ERP feed.
// NroFact is monotonically increasing and drives the sync watermark.
type FacturaPendiente struct {
	NroFact         int      `json:"NroFact"`
	NroDoc          string   `json:"NroDoc"`
	Nombre          string   `json:"Nombre"`
	Fecha           string   `json:"Fecha"` // "2006-01-02"
	Trabajo         string   `json:"Trabajo"`
	Prioridad       string   `json:"Prioridad"`
	Observaciones   string   `json:"Observaciones"`
	Identificadores []string `json:"identificadores"`
}

// Sublinea is one file entry under an invoice line. A sublínea with a file and
// copies is production work; without a file it is an extra service; with a
// reference keyword in Notas it is an attachment.
type Sublinea struct {
	SublineaID int    `json:"Sublinea_id"`
	Archivo    string `json:"Archivo"`
	CantCopias int    `json:"CantCopias"`
	Notas      string `json:"Notas"`
}

// Linea is one detailed invoice line. Grupo maps to a production area.
type Linea struct {
	Grupo         string     `json:"Grupo"`
	CodStock      string     `json:"CodStock"`
	CodArt        string     `json:"CodArt"`
	Descripcion   string     `json:"Descripcion"`
	Observaciones string     `json:"Observaciones"`
	CantidadHaber float64    `json:"CantidadHaber"`
	Precio        float64    `json:"Precio"`
	TotalLinea    float64    `json:"TotalLinea"`
	Sublineas     []Sublinea `json:"Sublineas"`
}

// FacturaDetalle is the per-invoice detailed record with lines and sublines.
type FacturaDetalle struct {
	NroDoc        string  `json:"NroDoc"`
	Nombre        string  `json:"Nombre"`
	Fecha         string  `json:"Fecha"`
	Observaciones string  `json:"Observaciones"`
	Lineas        []Linea `json:"Lineas"`
}

// Client talks to the ERP invoice API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FacturasPendientes fetches invoice headers with NroFact above the watermark.
// The server already filters by the query param; callers still re-check the
// strictly-greater condition before processing.
func (c *Client) FacturasPendientes(ctx context.Context, desdeNroFact int) ([]FacturaPendiente, error) {
	url := fmt.Sprintf("%s/pedidos/todos?NroFact=%d", c.baseURL, desdeNroFact)

	var out []FacturaPendiente
	if err := c.getJSON(ctx, url, &out); err != nil {
		return nil, fmt.Errorf("erp: facturas pendientes: %w", err)
	}
	return out, nil
}

// FacturaDetalle fetches one invoice with its lines and sublines.
func (c *Client) FacturaDetalle(ctx context.Context, nroFact int) (*FacturaDetalle, error) {
	url := fmt.Sprintf("%s/pedidos/%d/con_sublineas", c.baseURL, nroFact)

	var out FacturaDetalle
	if err := c.getJSON(ctx, url, &out); err != nil {
		return nil, fmt.Errorf("erp: detalle factura %d: %w", nroFact, err)
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("erp unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("erp returned %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
