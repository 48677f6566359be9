package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sajanbk/meatshop-golang/internal/models"
)

// ErrNotFound means the product (or delivery area) does not exist.
var ErrNotFound = errors.New("not found")

// Filter narrows ListAvailable. Zero values mean "no constraint".
type Filter struct {
	CategoryID   int64
	MeatType     string
	FeaturedOnly bool
}

const productColumns = `
	p.id, p.category_id, p.name, p.name_nepali, p.slug,
	p.description, p.description_nepali,
	p.price_per_kg, p.stock_kg, p.min_order_kg,
	p.meat_type, p.is_featured, p.is_available, p.image_url,
	p.created_at, p.updated_at, c.name`

// Store is the catalog read surface. The only writer of stock_kg is the
// inventory reconciler; everything here treats products as read-mostly.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.getOne(ctx, "p.id = ?", id)
}

func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.getOne(ctx, "p.slug = ?", slug)
}

func (s *Store) getOne(ctx context.Context, where string, arg any) (*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON p.category_id = c.id
		WHERE ` + where
	var p models.Product
	err := scanProduct(s.DB.QueryRowContext(ctx, query, arg), &p)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListAvailable returns orderable products matching the filter, featured
// first, then by name.
func (s *Store) ListAvailable(ctx context.Context, f Filter) ([]models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON p.category_id = c.id
		WHERE p.is_available = 1 AND p.stock_kg > 0 AND c.is_active = 1`
	args := []any{}
	if f.CategoryID != 0 {
		query += " AND p.category_id = ?"
		args = append(args, f.CategoryID)
	}
	if f.MeatType != "" {
		query += " AND p.meat_type = ?"
		args = append(args, f.MeatType)
	}
	if f.FeaturedOnly {
		query += " AND p.is_featured = 1"
	}
	query += " ORDER BY p.is_featured DESC, p.name ASC"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Product
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Search fetches candidates whose name (either language) or description
// contains the query, then orders them with the deterministic relevance
// ranking from search.go.
func (s *Store) Search(ctx context.Context, q string) ([]models.Product, error) {
	like := "%" + q + "%"
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN categories c ON p.category_id = c.id
		WHERE p.is_available = 1
		  AND (p.name LIKE ? OR p.name_nepali LIKE ? OR p.description LIKE ?)`,
		like, like, like)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Product
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	Rank(out, q)
	return out, nil
}

// ListCategories returns the active categories.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, name_nepali, slug, description, is_active
		FROM categories WHERE is_active = 1 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.NameNepali, &c.Slug, &c.Description, &c.IsActive); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetDeliveryArea looks up an active delivery area by id, for the per-area
// charge override at checkout.
func (s *Store) GetDeliveryArea(ctx context.Context, id int64) (*models.DeliveryArea, error) {
	var a models.DeliveryArea
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, area_name, area_name_nepali, delivery_charge, is_active
		FROM delivery_areas WHERE id = ? AND is_active = 1`, id).Scan(
		&a.ID, &a.AreaName, &a.AreaNameNepali, &a.DeliveryCharge, &a.IsActive)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// scanner lets scanProduct work for both QueryRow and Query rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner, p *models.Product) error {
	return row.Scan(
		&p.ID, &p.CategoryID, &p.Name, &p.NameNepali, &p.Slug,
		&p.Description, &p.DescriptionNepali,
		&p.PricePerKg, &p.StockKg, &p.MinOrderKg,
		&p.MeatType, &p.IsFeatured, &p.IsAvailable, &p.ImageURL,
		&p.CreatedAt, &p.UpdatedAt, &p.CategoryName)
}
