package procurement

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/constructflow/constructflow/internal/entity"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	bunDB := bun.NewDB(db, pgdialect.New())
	return &Repository{writer: bunDB, reader: bunDB}, mock
}

func poRow(id string, status entity.POStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "po_number", "project_id", "supplier_id", "total_amount", "status"}).
		AddRow(id, "PO-2026-abc12345", "project-1", "supplier-1", "15000000", string(status))
}

func TestApproveIfPendingCommits(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`UPDATE "purchase_orders"(.+)SET status = 'approved', approved_by = 'user-1'(.+)WHERE \(id = 'po-1'\) AND \(status = 'pending_approval'\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "purchase_orders" AS "purchase_order" WHERE \(purchase_order\.id = 'po-1'\)`).
		WillReturnRows(poRow("po-1", entity.POStatusApproved))

	po, err := repo.ApproveIfPending(context.Background(), "po-1", "user-1", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusApproved, po.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveIfPendingStatusConflict(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`UPDATE "purchase_orders"(.+)AND \(status = 'pending_approval'\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	// Re-fetch finds the order, so the status moved underneath us.
	mock.ExpectQuery(`SELECT (.+) FROM "purchase_orders" AS "purchase_order" WHERE \(purchase_order\.id = 'po-1'\)`).
		WillReturnRows(poRow("po-1", entity.POStatusApproved))

	_, err := repo.ApproveIfPending(context.Background(), "po-1", "user-1", time.Now().UTC())
	assert.ErrorIs(t, err, ErrStatusConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveIfPendingNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`UPDATE "purchase_orders"(.+)AND \(status = 'pending_approval'\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM "purchase_orders" AS "purchase_order" WHERE \(purchase_order\.id = 'missing'\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.ApproveIfPending(context.Background(), "missing", "user-1", time.Now().UTC())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusIfCurrentConflict(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`UPDATE "purchase_orders"(.+)SET status = 'cancelled'(.+)WHERE \(id = 'po-1'\) AND \(status = 'draft'\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM "purchase_orders"`).
		WillReturnRows(poRow("po-1", entity.POStatusPendingApproval))

	err := repo.UpdateStatusIfCurrent(context.Background(), "po-1", entity.POStatusDraft, entity.POStatusCancelled, time.Now().UTC())
	assert.ErrorIs(t, err, ErrStatusConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApprovedTotal(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\("total_amount"\), 0\) FROM "purchase_orders" AS "purchase_order" WHERE \(project_id = 'project-1'\) AND \(status = 'approved'\)`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("95000000"))

	total, err := repo.ApprovedTotal(context.Background(), "project-1")
	require.NoError(t, err)
	assert.Equal(t, "95000000", total.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMonthlySpendFiltersByWindow(t *testing.T) {
	repo, mock := newMockRepository(t)
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\("total_amount"\), 0\) FROM "purchase_orders"(.+)\(status = 'approved'\) AND \(order_date >= '2026-03-01(.+)\) AND \(order_date < '2026-04-01(.+)\) AND \(project_id = 'project-1'\)`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("1200.50"))

	total, err := repo.MonthlySpend(context.Background(), "project-1", start)
	require.NoError(t, err)
	assert.Equal(t, "1200.5", total.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT (.+) FROM "purchase_orders" AS "purchase_order" WHERE \(purchase_order\.id = 'missing'\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
