package inventory

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &Repository{reader: bun.NewDB(db, pgdialect.New())}, mock
}

func TestLowStockFiltersOnReorderLevel(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT (.+) FROM "materials" AS "material"(.+)WHERE \(material\.quantity_on_hand <= material\.reorder_level\) AND \(material\.project_id = 'project-1'\) ORDER BY material\.quantity_on_hand ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "quantity_on_hand", "reorder_level"}).
			AddRow("mat-1", "Portland Cement", "40", "100"))

	materials, err := repo.LowStock(context.Background(), "project-1", true)
	require.NoError(t, err)
	require.Len(t, materials, 1)
	assert.Equal(t, "Portland Cement", materials[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLowStockCount(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "materials" AS "material" WHERE \(quantity_on_hand <= reorder_level\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.LowStockCount(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
