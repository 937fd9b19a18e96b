package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"product-service/internal/models"
)

type ProductRepository struct {
	db          *sqlx.DB
	redisClient *redis.Client
}

func NewProductRepository(db *sqlx.DB, redisClient *redis.Client) *ProductRepository {
	return &ProductRepository{
		db:          db,
		redisClient: redisClient,
	}
}

func (r *ProductRepository) CreateTempProductDraft(ctx context.Context, draft []byte, key string, expiration time.Duration) error {
	err := r.redisClient.Set(ctx, key, draft, expiration).Err()
	return err
}

func (r *ProductRepository) GetTempProductDraft(ctx context.Context, key string) ([]byte, error) {
	data, err := r.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *ProductRepository) DeleteTempProductDraft(ctx context.Context, key string) error {
	err := r.redisClient.Del(ctx, key).Err()
	return err
}

// Job snapshots outlive the in-memory job registry so a restarted service
// can still answer status polls for finished jobs.

func (r *ProductRepository) SaveJobSnapshot(ctx context.Context, key string, snapshot []byte, expiration time.Duration) error {
	err := r.redisClient.Set(ctx, key, snapshot, expiration).Err()
	return err
}

func (r *ProductRepository) GetJobSnapshot(ctx context.Context, key string) ([]byte, error) {
	data, err := r.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *ProductRepository) FindDraftKeysByPattern(ctx context.Context, pattern string) ([]string, error) {
	var keys []string

	iter := r.redisClient.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan keys: %w", err)
	}

	return keys, nil
}

func (r *ProductRepository) CreateProduct(product *models.Product) error {
	slog.Info("Creating product",
		"product_id", product.ID,
		"product_name", product.Name,
		"status", product.Status)

	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	query := `
		INSERT INTO products (
			id, name, crop, data_type, region, status, triggers,
			coverage_start_date, coverage_end_date, terms, created_at, updated_at
		) VALUES (
			:id, :name, :crop, :data_type, :region, :status, :triggers,
			:coverage_start_date, :coverage_end_date, :terms, :created_at, :updated_at
		)`

	_, err := r.db.NamedExec(query, product)
	if err != nil {
		slog.Error("Failed to create product",
			"product_id", product.ID,
			"error", err)
		return fmt.Errorf("failed to create product: %w", err)
	}

	slog.Info("Successfully created product",
		"product_id", product.ID,
		"product_name", product.Name,
		"duration", time.Since(product.CreatedAt))
	return nil
}

func (r *ProductRepository) GetProductByID(id uuid.UUID) (*models.Product, error) {
	slog.Info("Retrieving product by ID", "product_id", id)
	start := time.Now()

	var product models.Product
	query := `
		SELECT
			id, name, crop, data_type, region, status, triggers,
			coverage_start_date, coverage_end_date, terms, created_at, updated_at
		FROM products
		WHERE id = $1`

	err := r.db.Get(&product, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			slog.Warn("Product not found", "product_id", id)
			return nil, fmt.Errorf("product not found")
		}
		slog.Error("Failed to get product",
			"product_id", id,
			"error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	slog.Info("Successfully retrieved product",
		"product_id", id,
		"product_name", product.Name,
		"duration", time.Since(start))
	return &product, nil
}

func (r *ProductRepository) GetAllProducts() ([]models.Product, error) {
	slog.Info("Retrieving all products")
	start := time.Now()

	var products []models.Product
	query := `
		SELECT
			id, name, crop, data_type, region, status, triggers,
			coverage_start_date, coverage_end_date, terms, created_at, updated_at
		FROM products
		ORDER BY created_at DESC`

	err := r.db.Select(&products, query)
	if err != nil {
		slog.Error("Failed to get all products", "error", err)
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}

	slog.Info("Successfully retrieved products",
		"count", len(products),
		"duration", time.Since(start))
	return products, nil
}

func (r *ProductRepository) GetProductsByStatus(status models.ProductStatus) ([]models.Product, error) {
	slog.Info("Retrieving products by status", "status", status)

	var products []models.Product
	query := `
		SELECT
			id, name, crop, data_type, region, status, triggers,
			coverage_start_date, coverage_end_date, terms, created_at, updated_at
		FROM products
		WHERE status = $1
		ORDER BY created_at DESC`

	err := r.db.Select(&products, query, status)
	if err != nil {
		slog.Error("Failed to get products by status",
			"status", status,
			"error", err)
		return nil, fmt.Errorf("failed to get products by status: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) UpdateProductStatus(id uuid.UUID, status models.ProductStatus) error {
	slog.Info("Updating product status",
		"product_id", id,
		"status", status)

	query := `
		UPDATE products
		SET status = $1, updated_at = $2
		WHERE id = $3`

	result, err := r.db.Exec(query, status, time.Now(), id)
	if err != nil {
		slog.Error("Failed to update product status",
			"product_id", id,
			"error", err)
		return fmt.Errorf("failed to update product status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("product not found")
	}

	return nil
}

func (r *ProductRepository) DeleteProduct(id uuid.UUID) error {
	slog.Info("Deleting product", "product_id", id)

	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		slog.Error("Failed to delete product",
			"product_id", id,
			"error", err)
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("product not found")
	}

	slog.Info("Successfully deleted product", "product_id", id)
	return nil
}
