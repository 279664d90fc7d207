package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
)

// User is the credential view of an account. The role name comes joined
// from the roles table; only the foreign key is stored (the free-text role
// column of earlier schemas is gone).
type User struct {
	ID           int64     `json:"idUsuario"`
	Name         string    `json:"nombre"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        *string   `json:"telefono"`
	RoleID       int64     `json:"idRol"`
	Role         string    `json:"rol"`
	RegisteredAt time.Time `json:"fechaRegistro"`
}

// Repository gives the auth flows their slice of the users table.
type Repository interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, name, email, passwordHash string, phone *string, roleName string) (*User, error)
}

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM usuarios WHERE email = $1)", email).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx, `
		SELECT u.id_usuario, u.nombre, u.email, u.password_hash, u.telefono,
		       u.id_rol, r.nombre, u.fecha_registro
		FROM usuarios u
		JOIN roles r ON r.id_rol = u.id_rol
		WHERE u.email = $1
	`, email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone,
		&u.RoleID, &u.Role, &u.RegisteredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: usuario", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading user by email: %w", err)
	}
	return &u, nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, name, email, passwordHash string, phone *string, roleName string) (*User, error) {
	u := User{Name: name, Email: email, PasswordHash: passwordHash, Phone: phone, Role: roleName}
	err := r.db.QueryRow(ctx, `
		INSERT INTO usuarios (nombre, email, password_hash, telefono, id_rol, fecha_registro)
		VALUES ($1, $2, $3, $4, (SELECT id_rol FROM roles WHERE nombre = $5), NOW())
		RETURNING id_usuario, id_rol, fecha_registro
	`, name, email, passwordHash, phone, roleName).Scan(&u.ID, &u.RoleID, &u.RegisteredAt)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return &u, nil
}
