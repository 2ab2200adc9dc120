package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse cuerpo de error HTTP. Details solo se llena en rechazos
// de stock, con el producto, la bodega y el faltante numérico.
type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details *StockDetails `json:"details,omitempty"`
}

// StockDetails detalle numérico de un rechazo por stock.
type StockDetails struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	LocationID  string `json:"location_id,omitempty"`
	Requested   int64  `json:"requested"`
	Available   int64  `json:"available"`
}
