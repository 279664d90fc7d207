package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
	"github.com/mrdaaxel/tienda-api/internal/storage"
)

// Repository defines user, address and payment-method table operations.
// GetOwnedAddress / GetOwnedPaymentMethod / PaymentTypeExists also serve the
// order workflow's ownership validations.
type Repository interface {
	GetUser(ctx context.Context, q storage.Querier, id int64) (*User, error)
	ListUsers(ctx context.Context, q storage.Querier) ([]User, error)
	EmailTakenByOther(ctx context.Context, q storage.Querier, email string, userID int64) (bool, error)
	UpdateUser(ctx context.Context, q storage.Querier, u *User) error
	DeleteUser(ctx context.Context, q storage.Querier, id int64) error
	GetRole(ctx context.Context, q storage.Querier, id int64) (*Role, error)

	ListAddresses(ctx context.Context, q storage.Querier, userID int64) ([]Address, error)
	GetOwnedAddress(ctx context.Context, q storage.Querier, userID, addressID int64) (*Address, error)
	CreateAddress(ctx context.Context, q storage.Querier, a *Address) error
	UpdateAddress(ctx context.Context, q storage.Querier, a *Address) error
	DeleteAddress(ctx context.Context, q storage.Querier, addressID int64) error

	ListPaymentMethods(ctx context.Context, q storage.Querier, userID int64) ([]SavedPaymentMethod, error)
	GetOwnedPaymentMethod(ctx context.Context, q storage.Querier, userID, methodID int64) (*SavedPaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, q storage.Querier, m *SavedPaymentMethod) error
	UpdatePaymentMethod(ctx context.Context, q storage.Querier, m *SavedPaymentMethod) error
	DeletePaymentMethod(ctx context.Context, q storage.Querier, methodID int64) error

	ListPaymentTypes(ctx context.Context, q storage.Querier) ([]PaymentType, error)
	PaymentTypeExists(ctx context.Context, q storage.Querier, id int64) (bool, error)
}

type PostgresRepository struct{}

func NewRepository() Repository {
	return &PostgresRepository{}
}

const userSelect = `
	SELECT u.id_usuario, u.nombre, u.email, u.telefono, u.id_rol, r.nombre, u.fecha_registro
	FROM usuarios u
	JOIN roles r ON r.id_rol = u.id_rol
`

func (r *PostgresRepository) GetUser(ctx context.Context, q storage.Querier, id int64) (*User, error) {
	var u User
	err := q.QueryRow(ctx, userSelect+" WHERE u.id_usuario = $1", id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.RoleID, &u.Role, &u.RegisteredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: usuario %d", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading user: %w", err)
	}
	return &u, nil
}

func (r *PostgresRepository) ListUsers(ctx context.Context, q storage.Querier) ([]User, error) {
	rows, err := q.Query(ctx, userSelect+" ORDER BY u.id_usuario")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.RoleID, &u.Role, &u.RegisteredAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) EmailTakenByOther(ctx context.Context, q storage.Querier, email string, userID int64) (bool, error) {
	var taken bool
	err := q.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM usuarios WHERE email = $1 AND id_usuario != $2)",
		email, userID).Scan(&taken)
	return taken, err
}

func (r *PostgresRepository) UpdateUser(ctx context.Context, q storage.Querier, u *User) error {
	tag, err := q.Exec(ctx, `
		UPDATE usuarios SET nombre = $2, email = $3, telefono = $4, id_rol = $5
		WHERE id_usuario = $1
	`, u.ID, u.Name, u.Email, u.Phone, u.RoleID)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: usuario %d", apperrors.ErrNotFound, u.ID)
	}
	return nil
}

func (r *PostgresRepository) DeleteUser(ctx context.Context, q storage.Querier, id int64) error {
	tag, err := q.Exec(ctx, "DELETE FROM usuarios WHERE id_usuario = $1", id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: usuario %d", apperrors.ErrNotFound, id)
	}
	return nil
}

func (r *PostgresRepository) GetRole(ctx context.Context, q storage.Querier, id int64) (*Role, error) {
	var role Role
	err := q.QueryRow(ctx, "SELECT id_rol, nombre FROM roles WHERE id_rol = $1", id).
		Scan(&role.ID, &role.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: rol %d", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading role: %w", err)
	}
	return &role, nil
}

func (r *PostgresRepository) ListAddresses(ctx context.Context, q storage.Querier, userID int64) ([]Address, error) {
	rows, err := q.Query(ctx, `
		SELECT id_direccion, id_usuario, provincia, ciudad, calle, numero, codigo_postal
		FROM direcciones_usuario WHERE id_usuario = $1
		ORDER BY id_direccion
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing addresses: %w", err)
	}
	defer rows.Close()

	addresses := []Address{}
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Province, &a.City, &a.Street, &a.Number, &a.PostalCode); err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}

func (r *PostgresRepository) GetOwnedAddress(ctx context.Context, q storage.Querier, userID, addressID int64) (*Address, error) {
	var a Address
	err := q.QueryRow(ctx, `
		SELECT id_direccion, id_usuario, provincia, ciudad, calle, numero, codigo_postal
		FROM direcciones_usuario
		WHERE id_direccion = $1 AND id_usuario = $2
	`, addressID, userID).Scan(&a.ID, &a.UserID, &a.Province, &a.City, &a.Street, &a.Number, &a.PostalCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: dirección", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading address: %w", err)
	}
	return &a, nil
}

func (r *PostgresRepository) CreateAddress(ctx context.Context, q storage.Querier, a *Address) error {
	err := q.QueryRow(ctx, `
		INSERT INTO direcciones_usuario (id_usuario, provincia, ciudad, calle, numero, codigo_postal)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id_direccion
	`, a.UserID, a.Province, a.City, a.Street, a.Number, a.PostalCode).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("creating address: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateAddress(ctx context.Context, q storage.Querier, a *Address) error {
	_, err := q.Exec(ctx, `
		UPDATE direcciones_usuario
		SET provincia = $2, ciudad = $3, calle = $4, numero = $5, codigo_postal = $6
		WHERE id_direccion = $1
	`, a.ID, a.Province, a.City, a.Street, a.Number, a.PostalCode)
	if err != nil {
		return fmt.Errorf("updating address: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteAddress(ctx context.Context, q storage.Querier, addressID int64) error {
	_, err := q.Exec(ctx, "DELETE FROM direcciones_usuario WHERE id_direccion = $1", addressID)
	if err != nil {
		return fmt.Errorf("deleting address: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListPaymentMethods(ctx context.Context, q storage.Querier, userID int64) ([]SavedPaymentMethod, error) {
	rows, err := q.Query(ctx, `
		SELECT id_metodo_pago_usuario, id_usuario, metodo, titular, ultimos4, expiracion
		FROM metodos_pago_usuario WHERE id_usuario = $1
		ORDER BY id_metodo_pago_usuario
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing payment methods: %w", err)
	}
	defer rows.Close()

	methods := []SavedPaymentMethod{}
	for rows.Next() {
		var m SavedPaymentMethod
		if err := rows.Scan(&m.ID, &m.UserID, &m.Method, &m.Holder, &m.Last4, &m.Expiry); err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, rows.Err()
}

func (r *PostgresRepository) GetOwnedPaymentMethod(ctx context.Context, q storage.Querier, userID, methodID int64) (*SavedPaymentMethod, error) {
	var m SavedPaymentMethod
	err := q.QueryRow(ctx, `
		SELECT id_metodo_pago_usuario, id_usuario, metodo, titular, ultimos4, expiracion
		FROM metodos_pago_usuario
		WHERE id_metodo_pago_usuario = $1 AND id_usuario = $2
	`, methodID, userID).Scan(&m.ID, &m.UserID, &m.Method, &m.Holder, &m.Last4, &m.Expiry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: método de pago", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading payment method: %w", err)
	}
	return &m, nil
}

func (r *PostgresRepository) CreatePaymentMethod(ctx context.Context, q storage.Querier, m *SavedPaymentMethod) error {
	err := q.QueryRow(ctx, `
		INSERT INTO metodos_pago_usuario (id_usuario, metodo, titular, ultimos4, expiracion)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id_metodo_pago_usuario
	`, m.UserID, m.Method, m.Holder, m.Last4, m.Expiry).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("creating payment method: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdatePaymentMethod(ctx context.Context, q storage.Querier, m *SavedPaymentMethod) error {
	_, err := q.Exec(ctx, `
		UPDATE metodos_pago_usuario
		SET metodo = $2, titular = $3, ultimos4 = $4, expiracion = $5
		WHERE id_metodo_pago_usuario = $1
	`, m.ID, m.Method, m.Holder, m.Last4, m.Expiry)
	if err != nil {
		return fmt.Errorf("updating payment method: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeletePaymentMethod(ctx context.Context, q storage.Querier, methodID int64) error {
	_, err := q.Exec(ctx, "DELETE FROM metodos_pago_usuario WHERE id_metodo_pago_usuario = $1", methodID)
	if err != nil {
		return fmt.Errorf("deleting payment method: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListPaymentTypes(ctx context.Context, q storage.Querier) ([]PaymentType, error) {
	rows, err := q.Query(ctx, "SELECT id_metodo_pago, metodo FROM metodos_pago ORDER BY id_metodo_pago")
	if err != nil {
		return nil, fmt.Errorf("listing payment types: %w", err)
	}
	defer rows.Close()

	types := []PaymentType{}
	for rows.Next() {
		var t PaymentType
		if err := rows.Scan(&t.ID, &t.Method); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (r *PostgresRepository) PaymentTypeExists(ctx context.Context, q storage.Querier, id int64) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM metodos_pago WHERE id_metodo_pago = $1)", id).Scan(&exists)
	return exists, err
}
