package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"inventory-service/internal/models"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetTenantByMerchantID retrieves the active tenant for a Clover merchant id.
// Returns nil without error when no tenant matches.
func (s *Store) GetTenantByMerchantID(ctx context.Context, merchantID string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.GetContext(ctx, &tenant,
		"SELECT * FROM tenants WHERE clover_merchant_id = $1 AND is_active = true", merchantID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetTenantByID retrieves a tenant by primary key
func (s *Store) GetTenantByID(ctx context.Context, id int64) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.GetContext(ctx, &tenant, "SELECT * FROM tenants WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tenant not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetRawMaterialByID retrieves a raw material by primary key
func (s *Store) GetRawMaterialByID(ctx context.Context, id int64) (*models.RawMaterial, error) {
	var material models.RawMaterial
	err := s.db.GetContext(ctx, &material, "SELECT * FROM raw_materials WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("raw material not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &material, nil
}

// GetRawMaterialByCloverItemID resolves the legacy direct link from a Clover
// catalog item to a raw material. Returns nil without error when unlinked.
func (s *Store) GetRawMaterialByCloverItemID(ctx context.Context, tenantID int64, cloverItemID string) (*models.RawMaterial, error) {
	var material models.RawMaterial
	err := s.db.GetContext(ctx, &material,
		"SELECT * FROM raw_materials WHERE tenant_id = $1 AND clover_item_id = $2 AND is_active = true",
		tenantID, cloverItemID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &material, nil
}

// TouchRawMaterialSync records when a linked Clover item was last seen in a
// webhook delivery
func (s *Store) TouchRawMaterialSync(ctx context.Context, tenantID int64, cloverItemID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE raw_materials SET clover_synced_at = NOW(), updated_at = NOW() WHERE tenant_id = $1 AND clover_item_id = $2",
		tenantID, cloverItemID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
