package seeder

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/constructflow/constructflow/internal/database"
	"github.com/constructflow/constructflow/internal/entity"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// Run seeds sample projects, suppliers, materials, and purchase orders if
// they are missing.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.projects(ctx); err != nil {
		return err
	}
	if err := s.suppliers(ctx); err != nil {
		return err
	}
	if err := s.materials(ctx); err != nil {
		return err
	}
	return s.purchaseOrders(ctx)
}

func (s *Seeder) projects(ctx context.Context) error {
	now := time.Now().UTC()
	budget := decimal.NewNullDecimal(decimal.NewFromInt(100_000_000))
	samples := []entity.Project{
		{
			ID:        "5f1c8f1e-0000-4000-8000-000000000001",
			Name:      "Riverside Tower",
			Location:  "Jakarta",
			StartDate: now.AddDate(0, -6, 0),
			Budget:    budget,
			Status:    entity.ProjectActive,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        "5f1c8f1e-0000-4000-8000-000000000002",
			Name:      "Harbor Warehouse",
			Location:  "Surabaya",
			StartDate: now.AddDate(0, -2, 0),
			Status:    entity.ProjectPlanning,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	for _, sample := range samples {
		project := sample
		_, err := s.db.NewInsert().Model(&project).
			On("CONFLICT (id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded projects", zap.Int("count", len(samples)))
	}
	return nil
}

func (s *Seeder) suppliers(ctx context.Context) error {
	now := time.Now().UTC()
	contact := "Budi Santoso"
	phone := "+62-812-0000-1111"
	samples := []entity.Supplier{
		{
			ID:            "6a2d9f2e-0000-4000-8000-000000000001",
			Name:          "PT Beton Jaya",
			ContactPerson: &contact,
			Phone:         &phone,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:        "6a2d9f2e-0000-4000-8000-000000000002",
			Name:      "CV Baja Utama",
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	for _, sample := range samples {
		supplier := sample
		_, err := s.db.NewInsert().Model(&supplier).
			On("CONFLICT (id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded suppliers", zap.Int("count", len(samples)))
	}
	return nil
}

func (s *Seeder) materials(ctx context.Context) error {
	now := time.Now().UTC()
	projectID := "5f1c8f1e-0000-4000-8000-000000000001"
	supplierID := "6a2d9f2e-0000-4000-8000-000000000001"
	samples := []entity.Material{
		{
			ID:             "7b3eaf3e-0000-4000-8000-000000000001",
			ProjectID:      &projectID,
			Name:           "Portland Cement",
			Unit:           "bag",
			QuantityOnHand: decimal.NewFromInt(40),
			ReorderLevel:   decimal.NewFromInt(100),
			SupplierID:     &supplierID,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			ID:             "7b3eaf3e-0000-4000-8000-000000000002",
			ProjectID:      &projectID,
			Name:           "Rebar 12mm",
			Unit:           "rod",
			QuantityOnHand: decimal.NewFromInt(850),
			ReorderLevel:   decimal.NewFromInt(200),
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}

	for _, sample := range samples {
		material := sample
		_, err := s.db.NewInsert().Model(&material).
			On("CONFLICT (id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded materials", zap.Int("count", len(samples)))
	}
	return nil
}

func (s *Seeder) purchaseOrders(ctx context.Context) error {
	now := time.Now().UTC()
	samples := []entity.PurchaseOrder{
		{
			ID:          "8c4fbf4e-0000-4000-8000-000000000001",
			PONumber:    "PO-2026-SEED0001",
			ProjectID:   "5f1c8f1e-0000-4000-8000-000000000001",
			SupplierID:  "6a2d9f2e-0000-4000-8000-000000000001",
			OrderDate:   now,
			TotalAmount: decimal.NewFromInt(15_000_000),
			Status:      entity.POStatusPendingApproval,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "8c4fbf4e-0000-4000-8000-000000000002",
			PONumber:    "PO-2026-SEED0002",
			ProjectID:   "5f1c8f1e-0000-4000-8000-000000000001",
			SupplierID:  "6a2d9f2e-0000-4000-8000-000000000002",
			OrderDate:   now,
			TotalAmount: decimal.NewFromInt(5_500_000),
			Status:      entity.POStatusDraft,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	for _, sample := range samples {
		po := sample
		_, err := s.db.NewInsert().Model(&po).
			On("CONFLICT (po_number) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded purchase orders", zap.Int("count", len(samples)))
	}
	return nil
}
