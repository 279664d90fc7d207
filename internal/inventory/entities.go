package inventory

// Stock status labels. Seeded in estados_stock; the quantity→status mapping
// lives here so every mutation recomputes it the same way.
const (
	StatusOutOfStock = "Sin stock"
	StatusLow        = "Bajo"
	StatusInStock    = "En stock"
)

// Quantities of 1..lowStockThreshold count as "Bajo".
const lowStockThreshold = 5

// StatusFor derives the stock status from a quantity. Pure function.
func StatusFor(quantity int) string {
	switch {
	case quantity <= 0:
		return StatusOutOfStock
	case quantity <= lowStockThreshold:
		return StatusLow
	default:
		return StatusInStock
	}
}

// StockRecord is the authoritative available-quantity counter for a product.
// One active row per product; never deleted while the product exists.
type StockRecord struct {
	ID        int64  `json:"idStock"`
	ProductID int64  `json:"idProducto"`
	Quantity  int    `json:"cantidad"`
	Status    string `json:"estado"`
}
