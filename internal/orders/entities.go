package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fulfillment status labels seeded in estados_pedido. The set is reference
// data; code only distinguishes annulled (stock released) from active
// (stock reserved) via the annulled flag on the row.
const (
	StatusPendiente  = "Pendiente"
	StatusConfirmado = "Confirmado"
	StatusEnviado    = "Enviado"
	StatusEntregado  = "Entregado"
	StatusCancelado  = "Cancelado"
	StatusDevuelto   = "Devuelto"
)

// Payment status labels seeded in estados_pago.
const (
	PaymentPendiente = "Pendiente"
	PaymentPagado    = "Pagado"
	PaymentRechazado = "Rechazado"
)

// FulfillmentStatus is one row of the estados_pedido reference table.
type FulfillmentStatus struct {
	ID       int64  `json:"idEstadoPedido"`
	Label    string `json:"estado"`
	Annulled bool   `json:"anulado"`
}

// PaymentStatus is one row of the estados_pago reference table.
type PaymentStatus struct {
	ID    int64  `json:"idEstadoPago"`
	Label string `json:"estado"`
}

// Order is an immutable snapshot of a purchase. Only the two status
// references change after creation; cancellation is a status transition,
// never a delete.
type Order struct {
	ID                   int64           `json:"idPedido"`
	UserID               int64           `json:"idUsuario"`
	Date                 time.Time       `json:"fecha"`
	Total                decimal.Decimal `json:"total"`
	AddressID            *int64          `json:"idDireccion"`
	SavedPaymentMethodID *int64          `json:"idMetodoPagoUsuario"`
	PaymentTypeID        *int64          `json:"idMetodoPago"`
	FulfillmentStatusID  int64           `json:"idEstadoPedido"`
	FulfillmentStatus    string          `json:"estadoPedido"`
	PaymentStatusID      int64           `json:"idEstadoPago"`
	PaymentStatus        string          `json:"estadoPago"`
}

// Line captures product, quantity and the unit price at purchase time. The
// price is never recomputed from the catalog.
type Line struct {
	ID        int64           `json:"idPedidoDetalle"`
	OrderID   int64           `json:"idPedido"`
	ProductID int64           `json:"idProducto"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precioUnitario"`
}

// Subtotal is quantity × unit price, 2-decimal fixed point.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

// TotalOf sums line subtotals. An order's total always equals this over its
// own lines.
func TotalOf(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total.Round(2)
}

// CancellableFrom reports whether a client may cancel from the given
// fulfillment status. Only Pendiente and Confirmado qualify.
func CancellableFrom(label string) bool {
	return label == StatusPendiente || label == StatusConfirmado
}

// LineView is a line joined with its product for order listings.
type LineView struct {
	Line
	ProductName  *string          `json:"nombreProducto"`
	ProductBrand *string          `json:"marcaProducto"`
	CurrentPrice *decimal.Decimal `json:"precioActual"`
}

// View is an order with its lines and, for admin listings, the buyer.
type View struct {
	Order
	Lines     []LineView `json:"detalles"`
	UserName  *string    `json:"nombreUsuario,omitempty"`
	UserEmail *string    `json:"emailUsuario,omitempty"`
}
