package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
	"github.com/mrdaaxel/tienda-api/internal/storage"
)

// Repository defines catalog table operations.
type Repository interface {
	GetProduct(ctx context.Context, q storage.Querier, id int64) (*Product, error)
	GetProductDetail(ctx context.Context, q storage.Querier, id int64) (*ProductDetail, error)
	SearchProducts(ctx context.Context, q storage.Querier, req SearchRequest) (*SearchResult, error)
	CreateProduct(ctx context.Context, q storage.Querier, p *Product) error
	UpdateProduct(ctx context.Context, q storage.Querier, p *Product) error
	DeleteProduct(ctx context.Context, q storage.Querier, id int64) error

	ListCategories(ctx context.Context, q storage.Querier) ([]Category, error)
	CreateCategory(ctx context.Context, q storage.Querier, description string) (*Category, error)
	UpdateCategory(ctx context.Context, q storage.Querier, id int64, description string) error
	DeleteCategory(ctx context.Context, q storage.Querier, id int64) error

	ListImages(ctx context.Context, q storage.Querier, productID int64) ([]ProductImage, error)
	AddImages(ctx context.Context, q storage.Querier, productID int64, images []ProductImage) error
	SetPrimaryImage(ctx context.Context, q storage.Querier, productID, imageID int64) error
	DeleteImage(ctx context.Context, q storage.Querier, productID, imageID int64) error
}

type PostgresRepository struct{}

func NewRepository() Repository {
	return &PostgresRepository{}
}

const summarySelect = `
	SELECT p.id_producto, p.codigo_barra, p.nombre, p.descripcion, p.marca,
	       p.id_categoria, p.precio,
	       (SELECT i.url_imagen FROM imagenes_producto i
	        WHERE i.id_producto = p.id_producto
	        ORDER BY i.es_principal DESC, i.orden ASC
	        LIMIT 1),
	       COALESCE(s.cantidad, 0),
	       COALESCE(e.estado, 'Sin stock')
	FROM productos p
	LEFT JOIN stocks s ON s.id_producto = p.id_producto
	LEFT JOIN estados_stock e ON e.id_estado_stock = s.id_estado_stock
`

func scanSummary(row pgx.Row, dst *ProductSummary) error {
	return row.Scan(&dst.ID, &dst.Barcode, &dst.Name, &dst.Description, &dst.Brand,
		&dst.CategoryID, &dst.Price, &dst.PrimaryImage, &dst.Stock, &dst.StockStatus)
}

func (r *PostgresRepository) GetProduct(ctx context.Context, q storage.Querier, id int64) (*Product, error) {
	var p Product
	err := q.QueryRow(ctx, `
		SELECT id_producto, codigo_barra, nombre, descripcion, marca, id_categoria, precio
		FROM productos WHERE id_producto = $1
	`, id).Scan(&p.ID, &p.Barcode, &p.Name, &p.Description, &p.Brand, &p.CategoryID, &p.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: producto %d", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading product: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) GetProductDetail(ctx context.Context, q storage.Querier, id int64) (*ProductDetail, error) {
	var d ProductDetail
	err := scanSummary(q.QueryRow(ctx, summarySelect+" WHERE p.id_producto = $1", id), &d.ProductSummary)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: producto %d", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading product detail: %w", err)
	}

	if d.CategoryID != nil {
		err = q.QueryRow(ctx,
			"SELECT descripcion FROM categorias WHERE id_categoria = $1", *d.CategoryID).
			Scan(&d.CategoryName)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("reading category name: %w", err)
		}
	}

	images, err := r.ListImages(ctx, q, id)
	if err != nil {
		return nil, err
	}
	d.Gallery = make([]string, 0, len(images))
	for _, img := range images {
		d.Gallery = append(d.Gallery, img.URL)
	}
	return &d, nil
}

func (r *PostgresRepository) SearchProducts(ctx context.Context, q storage.Querier, req SearchRequest) (*SearchResult, error) {
	where := " WHERE 1=1"
	args := []any{}
	if req.Text != "" {
		args = append(args, "%"+req.Text+"%")
		n := len(args)
		where += fmt.Sprintf(" AND (p.nombre ILIKE $%d OR p.descripcion ILIKE $%d OR p.marca ILIKE $%d)", n, n, n)
	}
	if req.CategoryID != nil {
		args = append(args, *req.CategoryID)
		where += fmt.Sprintf(" AND p.id_categoria = $%d", len(args))
	}

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM productos p"+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting products: %w", err)
	}

	args = append(args, req.PageSize, (req.Page-1)*req.PageSize)
	rows, err := q.Query(ctx,
		summarySelect+where+fmt.Sprintf(" ORDER BY p.id_producto LIMIT $%d OFFSET $%d", len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}
	defer rows.Close()

	result := &SearchResult{
		TotalItems:  total,
		TotalPages:  (total + req.PageSize - 1) / req.PageSize,
		CurrentPage: req.Page,
		PageSize:    req.PageSize,
		Products:    []ProductSummary{},
	}
	for rows.Next() {
		var s ProductSummary
		if err := scanSummary(rows, &s); err != nil {
			return nil, err
		}
		result.Products = append(result.Products, s)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) CreateProduct(ctx context.Context, q storage.Querier, p *Product) error {
	err := q.QueryRow(ctx, `
		INSERT INTO productos (codigo_barra, nombre, descripcion, marca, id_categoria, precio)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id_producto
	`, p.Barcode, p.Name, p.Description, p.Brand, p.CategoryID, p.Price).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("creating product: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateProduct(ctx context.Context, q storage.Querier, p *Product) error {
	tag, err := q.Exec(ctx, `
		UPDATE productos
		SET codigo_barra = $2, nombre = $3, descripcion = $4, marca = $5,
		    id_categoria = $6, precio = $7
		WHERE id_producto = $1
	`, p.ID, p.Barcode, p.Name, p.Description, p.Brand, p.CategoryID, p.Price)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: producto %d", apperrors.ErrNotFound, p.ID)
	}
	return nil
}

func (r *PostgresRepository) DeleteProduct(ctx context.Context, q storage.Querier, id int64) error {
	tag, err := q.Exec(ctx, "DELETE FROM productos WHERE id_producto = $1", id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: producto %d", apperrors.ErrNotFound, id)
	}
	return nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context, q storage.Querier) ([]Category, error) {
	rows, err := q.Query(ctx, "SELECT id_categoria, descripcion FROM categorias ORDER BY descripcion")
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Description); err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, q storage.Querier, description string) (*Category, error) {
	cat := Category{Description: description}
	err := q.QueryRow(ctx,
		"INSERT INTO categorias (descripcion) VALUES ($1) RETURNING id_categoria", description).
		Scan(&cat.ID)
	if err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}
	return &cat, nil
}

func (r *PostgresRepository) UpdateCategory(ctx context.Context, q storage.Querier, id int64, description string) error {
	tag, err := q.Exec(ctx,
		"UPDATE categorias SET descripcion = $2 WHERE id_categoria = $1", id, description)
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: categoría %d", apperrors.ErrNotFound, id)
	}
	return nil
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, q storage.Querier, id int64) error {
	tag, err := q.Exec(ctx, "DELETE FROM categorias WHERE id_categoria = $1", id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: categoría %d", apperrors.ErrNotFound, id)
	}
	return nil
}

func (r *PostgresRepository) ListImages(ctx context.Context, q storage.Querier, productID int64) ([]ProductImage, error) {
	rows, err := q.Query(ctx, `
		SELECT id_imagen, id_producto, url_imagen, es_principal, orden
		FROM imagenes_producto
		WHERE id_producto = $1
		ORDER BY orden
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	defer rows.Close()

	images := []ProductImage{}
	for rows.Next() {
		var img ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.IsPrimary, &img.Order); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *PostgresRepository) AddImages(ctx context.Context, q storage.Querier, productID int64, images []ProductImage) error {
	// A new primary demotes the existing one.
	for _, img := range images {
		if img.IsPrimary {
			if _, err := q.Exec(ctx,
				"UPDATE imagenes_producto SET es_principal = FALSE WHERE id_producto = $1", productID); err != nil {
				return fmt.Errorf("demoting primary image: %w", err)
			}
			break
		}
	}
	for _, img := range images {
		if _, err := q.Exec(ctx, `
			INSERT INTO imagenes_producto (id_producto, url_imagen, es_principal, orden)
			VALUES ($1, $2, $3, $4)
		`, productID, img.URL, img.IsPrimary, img.Order); err != nil {
			return fmt.Errorf("inserting image: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) SetPrimaryImage(ctx context.Context, q storage.Querier, productID, imageID int64) error {
	if _, err := q.Exec(ctx,
		"UPDATE imagenes_producto SET es_principal = FALSE WHERE id_producto = $1", productID); err != nil {
		return fmt.Errorf("demoting primary image: %w", err)
	}
	tag, err := q.Exec(ctx, `
		UPDATE imagenes_producto SET es_principal = TRUE, orden = 0
		WHERE id_imagen = $1 AND id_producto = $2
	`, imageID, productID)
	if err != nil {
		return fmt.Errorf("promoting primary image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: imagen %d", apperrors.ErrNotFound, imageID)
	}
	return nil
}

func (r *PostgresRepository) DeleteImage(ctx context.Context, q storage.Querier, productID, imageID int64) error {
	tag, err := q.Exec(ctx,
		"DELETE FROM imagenes_producto WHERE id_imagen = $1 AND id_producto = $2", imageID, productID)
	if err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: imagen %d", apperrors.ErrNotFound, imageID)
	}
	return nil
}
