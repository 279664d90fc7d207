package users

import "time"

// User is the account view for profile and admin management. The role name
// is joined from the roles table; only id_rol is stored.
type User struct {
	ID           int64     `json:"idUsuario"`
	Name         string    `json:"nombre"`
	Email        string    `json:"email"`
	Phone        *string   `json:"telefono"`
	RoleID       int64     `json:"idRol"`
	Role         string    `json:"rol"`
	RegisteredAt time.Time `json:"fechaRegistro"`
}

// Address is a saved shipping address, owned by one user.
type Address struct {
	ID         int64   `json:"idDireccion"`
	UserID     int64   `json:"-"`
	Province   *string `json:"provincia"`
	City       *string `json:"ciudad"`
	Street     *string `json:"calle"`
	Number     *string `json:"numero"`
	PostalCode *string `json:"codigoPostal"`
}

// SavedPaymentMethod is a labeled reference to how the user pays. No gateway
// integration; last4/expiry are display data only.
type SavedPaymentMethod struct {
	ID     int64   `json:"idMetodoPagoUsuario"`
	UserID int64   `json:"-"`
	Method string  `json:"metodo"`
	Holder *string `json:"titular"`
	Last4  *string `json:"ultimos4"`
	Expiry *string `json:"expiracion"`
}

// PaymentType is seeded reference data (Efectivo, Tarjeta, MercadoPago).
type PaymentType struct {
	ID     int64  `json:"idMetodoPago"`
	Method string `json:"metodo"`
}

// Role is the normalized role record.
type Role struct {
	ID   int64  `json:"idRol"`
	Name string `json:"nombre"`
}
