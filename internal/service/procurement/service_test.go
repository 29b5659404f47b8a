package procurement

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/constructflow/constructflow/internal/entity"
	repo "github.com/constructflow/constructflow/internal/repository/procurement"
	"github.com/constructflow/constructflow/pkg/errorbank"
)

type fakeStore struct {
	created      *entity.PurchaseOrder
	createdItems []*entity.POItem
	orders       map[string]*entity.PurchaseOrder

	statusUpdates []statusUpdate
	updateErr     error

	spendProjectID string
	spendStart     time.Time
}

type statusUpdate struct {
	id            string
	current, next entity.POStatus
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: make(map[string]*entity.PurchaseOrder)}
}

func (f *fakeStore) CreateWithItems(_ context.Context, po *entity.PurchaseOrder, items []*entity.POItem) error {
	f.created = po
	f.createdItems = items
	f.orders[po.ID] = po
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	po, ok := f.orders[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return po, nil
}

func (f *fakeStore) ListRunning(_ context.Context, _ int) ([]*entity.PurchaseOrder, error) {
	out := make([]*entity.PurchaseOrder, 0, len(f.orders))
	for _, po := range f.orders {
		out = append(out, po)
	}
	return out, nil
}

func (f *fakeStore) MonthlySpend(_ context.Context, projectID string, monthStart time.Time) (decimal.Decimal, error) {
	f.spendProjectID = projectID
	f.spendStart = monthStart
	return decimal.Zero, nil
}

func (f *fakeStore) ApprovedTotal(context.Context, string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakeStore) UpdateStatusIfCurrent(_ context.Context, id string, current, next entity.POStatus, _ time.Time) error {
	f.statusUpdates = append(f.statusUpdates, statusUpdate{id: id, current: current, next: next})
	if f.updateErr != nil {
		return f.updateErr
	}
	po, ok := f.orders[id]
	if !ok {
		return repo.ErrNotFound
	}
	if po.Status != current {
		return repo.ErrStatusConflict
	}
	po.Status = next
	return nil
}

func newTestService(store *fakeStore) *Service {
	return &Service{store: store, logger: zap.NewNop()}
}

func requireKind(t *testing.T, err error, kind errorbank.Kind) *errorbank.AppError {
	t.Helper()
	var appErr *errorbank.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, kind, appErr.Kind())
	return appErr
}

func TestCreateComputesTotals(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	po, err := svc.Create(context.Background(), CreateRequest{
		ProjectID:  "project-1",
		SupplierID: "supplier-1",
		CreatedBy:  "user-1",
		Items: []LineItem{
			{MaterialID: "mat-1", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("125.50")},
			{MaterialID: "mat-2", Quantity: decimal.RequireFromString("2.5"), UnitPrice: decimal.NewFromInt(400)},
		},
	})
	require.NoError(t, err)

	// 10 * 125.50 + 2.5 * 400 = 1255 + 1000
	assert.True(t, po.TotalAmount.Equal(decimal.RequireFromString("2255")), "total %s", po.TotalAmount)
	assert.Equal(t, entity.POStatusDraft, po.Status)
	assert.NotEmpty(t, po.ID)
	assert.Regexp(t, `^PO-\d{4}-[0-9a-f]{8}$`, po.PONumber)

	require.Len(t, store.createdItems, 2)
	assert.True(t, store.createdItems[0].Subtotal.Equal(decimal.RequireFromString("1255")))
	assert.True(t, store.createdItems[1].Subtotal.Equal(decimal.RequireFromString("1000")))
	for _, item := range store.createdItems {
		assert.Equal(t, po.ID, item.POID)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newFakeStore())
	item := LineItem{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)}

	tests := []struct {
		name string
		req  CreateRequest
	}{
		{
			name: "missing project",
			req:  CreateRequest{SupplierID: "supplier-1", Items: []LineItem{item}},
		},
		{
			name: "missing supplier",
			req:  CreateRequest{ProjectID: "project-1", Items: []LineItem{item}},
		},
		{
			name: "no items",
			req:  CreateRequest{ProjectID: "project-1", SupplierID: "supplier-1"},
		},
		{
			name: "zero quantity",
			req: CreateRequest{ProjectID: "project-1", SupplierID: "supplier-1", Items: []LineItem{
				{Quantity: decimal.Zero, UnitPrice: decimal.NewFromInt(10)},
			}},
		},
		{
			name: "negative price",
			req: CreateRequest{ProjectID: "project-1", SupplierID: "supplier-1", Items: []LineItem{
				{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(-1)},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			requireKind(t, err, errorbank.KindBadRequest)
		})
	}
}

func TestAdvanceSubmitsDraft(t *testing.T) {
	store := newFakeStore()
	store.orders["po-1"] = &entity.PurchaseOrder{ID: "po-1", Status: entity.POStatusDraft}
	svc := newTestService(store)

	err := svc.Advance(context.Background(), "po-1", entity.POStatusPendingApproval)
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusPendingApproval, store.orders["po-1"].Status)
	require.Len(t, store.statusUpdates, 1)
	assert.Equal(t, entity.POStatusDraft, store.statusUpdates[0].current)
}

func TestAdvanceRejectsApprovedTarget(t *testing.T) {
	store := newFakeStore()
	store.orders["po-1"] = &entity.PurchaseOrder{ID: "po-1", Status: entity.POStatusPendingApproval}
	svc := newTestService(store)

	err := svc.Advance(context.Background(), "po-1", entity.POStatusApproved)
	requireKind(t, err, errorbank.KindUnprocessableEntity)
	assert.Empty(t, store.statusUpdates)
}

func TestAdvanceRejectsInvalidTransition(t *testing.T) {
	store := newFakeStore()
	store.orders["po-1"] = &entity.PurchaseOrder{ID: "po-1", Status: entity.POStatusDraft}
	svc := newTestService(store)

	err := svc.Advance(context.Background(), "po-1", entity.POStatusReceived)
	appErr := requireKind(t, err, errorbank.KindUnprocessableEntity)
	assert.Equal(t, "draft", appErr.Details()["current"])
	assert.Equal(t, "received", appErr.Details()["requested"])
	assert.Empty(t, store.statusUpdates)
}

func TestAdvanceUnknownStatus(t *testing.T) {
	svc := newTestService(newFakeStore())
	err := svc.Advance(context.Background(), "po-1", entity.POStatus("shipped"))
	requireKind(t, err, errorbank.KindBadRequest)
}

func TestAdvanceNotFound(t *testing.T) {
	svc := newTestService(newFakeStore())
	err := svc.Advance(context.Background(), "missing", entity.POStatusCancelled)
	requireKind(t, err, errorbank.KindNotFound)
}

func TestAdvanceConflict(t *testing.T) {
	store := newFakeStore()
	store.orders["po-1"] = &entity.PurchaseOrder{ID: "po-1", Status: entity.POStatusDraft}
	store.updateErr = repo.ErrStatusConflict
	svc := newTestService(store)

	err := svc.Advance(context.Background(), "po-1", entity.POStatusCancelled)
	requireKind(t, err, errorbank.KindConflict)
}

func TestGetNotFound(t *testing.T) {
	svc := newTestService(newFakeStore())
	_, err := svc.Get(context.Background(), "missing")
	requireKind(t, err, errorbank.KindNotFound)
}

func TestMonthlySpendTruncatesToMonthStart(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.MonthlySpend(context.Background(), "project-1", time.Date(2026, time.March, 17, 9, 42, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "project-1", store.spendProjectID)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), store.spendStart)
}

func TestPOCacheKey(t *testing.T) {
	assert.Equal(t, "po:abc", POCacheKey("abc"))
}
