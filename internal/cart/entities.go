package cart

import (
	"github.com/shopspring/decimal"
)

// Cart is one per user, created lazily on the first add.
type Cart struct {
	ID     int64 `json:"idCarrito"`
	UserID int64 `json:"idUsuario"`
}

// Line is one (product, quantity) entry. At most one line per
// (cart, product) pair; repeated adds merge quantities.
type Line struct {
	ID        int64 `json:"idCarritoDetalle"`
	CartID    int64 `json:"idCarrito"`
	ProductID int64 `json:"idProducto"`
	Quantity  int   `json:"cantidad"`
}

// ProductSnapshot is the catalog view shown next to a line.
type ProductSnapshot struct {
	ID          int64           `json:"idProducto"`
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion"`
	Brand       *string         `json:"marca"`
	Price       decimal.Decimal `json:"precio"`
}

// Item is a line joined with its product for the cart listing.
type Item struct {
	LineID   int64           `json:"idCarritoDetalle"`
	Product  ProductSnapshot `json:"producto"`
	Quantity int             `json:"cantidad"`
}
