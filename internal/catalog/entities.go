package catalog

import (
	"github.com/shopspring/decimal"
)

// Product is a catalog record. Price is fixed-point with 2 decimals; the
// order workflow snapshots it into order lines and never reads it back.
type Product struct {
	ID          int64           `json:"idProducto"`
	Barcode     *string         `json:"codigoBarra"`
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion"`
	Brand       *string         `json:"marca"`
	CategoryID  *int64          `json:"idCategoria"`
	Price       decimal.Decimal `json:"precio"`
}

// Category groups products. Plain reference data.
type Category struct {
	ID          int64  `json:"idCategoria"`
	Description string `json:"descripcion"`
}

// ProductImage belongs to a product's gallery; at most one primary image.
type ProductImage struct {
	ID        int64  `json:"idImagen"`
	ProductID int64  `json:"idProducto"`
	URL       string `json:"urlImagen"`
	IsPrimary bool   `json:"esPrincipal"`
	Order     int    `json:"orden"`
}

// ProductSummary is the list/search row: product plus primary image and
// current stock.
type ProductSummary struct {
	Product
	PrimaryImage *string `json:"imagenPrincipal"`
	Stock        int     `json:"stock"`
	StockStatus  string  `json:"estadoStock"`
}

// ProductDetail adds the category name and full gallery.
type ProductDetail struct {
	ProductSummary
	CategoryName *string  `json:"categoriaNombre"`
	Gallery      []string `json:"galeria"`
}

// SearchRequest filters and paginates the catalog.
type SearchRequest struct {
	Text       string `form:"texto"`
	CategoryID *int64 `form:"idCategoria"`
	Page       int    `form:"pagina"`
	PageSize   int    `form:"itemsPorPagina"`
}

// SearchResult is a paginated catalog page.
type SearchResult struct {
	TotalItems  int              `json:"totalItems"`
	TotalPages  int              `json:"totalPaginas"`
	CurrentPage int              `json:"paginaActual"`
	PageSize    int              `json:"itemsPorPagina"`
	Products    []ProductSummary `json:"productos"`
}
