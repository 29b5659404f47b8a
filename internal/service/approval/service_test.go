package approval

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/constructflow/constructflow/internal/cache"
	"github.com/constructflow/constructflow/internal/entity"
	repo "github.com/constructflow/constructflow/internal/repository/procurement"
)

// fakeLedger is an in-memory Ledger with the same conditional-write
// semantics as the real repository.
type fakeLedger struct {
	mu       sync.Mutex
	orders   map[string]*entity.PurchaseOrder
	projects map[string]*entity.Project
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		orders:   make(map[string]*entity.PurchaseOrder),
		projects: make(map[string]*entity.Project),
	}
}

func (f *fakeLedger) GetWithProject(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	po, ok := f.orders[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	snapshot := *po
	if project, ok := f.projects[po.ProjectID]; ok {
		projectCopy := *project
		snapshot.Project = &projectCopy
	}
	return &snapshot, nil
}

func (f *fakeLedger) ApprovedTotal(_ context.Context, projectID string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := decimal.Zero
	for _, po := range f.orders {
		if po.ProjectID == projectID && po.Status == entity.POStatusApproved {
			total = total.Add(po.TotalAmount)
		}
	}
	return total, nil
}

func (f *fakeLedger) ApproveIfPending(_ context.Context, id, approverID string, at time.Time) (*entity.PurchaseOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	po, ok := f.orders[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if po.Status != entity.POStatusPendingApproval {
		return nil, repo.ErrStatusConflict
	}
	po.Status = entity.POStatusApproved
	po.ApprovedBy = &approverID
	po.ApprovedAt = &at
	po.UpdatedAt = at
	snapshot := *po
	return &snapshot, nil
}

// recordingCache records deletes so tests can assert invalidation.
type recordingCache struct {
	mu      sync.Mutex
	deleted []string
}

func (c *recordingCache) Get(context.Context, string) ([]byte, error) {
	return nil, cache.ErrCacheMiss
}

func (c *recordingCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (c *recordingCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, key)
	return nil
}

func newTestService(ledger Ledger, policy NullBudgetPolicy) (*Service, *recordingCache) {
	rc := &recordingCache{}
	return &Service{
		ledger: ledger,
		policy: policy,
		cache:  rc,
		logger: zap.NewNop(),
	}, rc
}

func money(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func seedProject(ledger *fakeLedger, id string, budget *int64) {
	project := &entity.Project{ID: id, Name: "Riverside Tower", Status: entity.ProjectActive}
	if budget != nil {
		project.Budget = decimal.NewNullDecimal(money(*budget))
	}
	ledger.projects[id] = project
}

func seedPO(ledger *fakeLedger, id, projectID string, amount int64, status entity.POStatus) {
	ledger.orders[id] = &entity.PurchaseOrder{
		ID:          id,
		PONumber:    "PO-2026-" + id,
		ProjectID:   projectID,
		SupplierID:  "supplier-1",
		OrderDate:   time.Now().UTC(),
		TotalAmount: money(amount),
		Status:      status,
	}
}

func TestApproveWithinBudget(t *testing.T) {
	ledger := newFakeLedger()
	budget := int64(100_000_000)
	seedProject(ledger, "project-1", &budget)
	seedPO(ledger, "po-approved", "project-1", 80_000_000, entity.POStatusApproved)
	seedPO(ledger, "po-pending", "project-1", 15_000_000, entity.POStatusPendingApproval)

	svc, rc := newTestService(ledger, NullBudgetUnlimited)
	result, err := svc.Approve(context.Background(), "po-pending", "user-1")
	require.NoError(t, err)

	assert.Equal(t, "po-pending", result.POID)
	assert.Equal(t, entity.POStatusApproved, result.Status)
	assert.Equal(t, "user-1", result.ApprovedBy)
	assert.False(t, result.ApprovedAt.IsZero())
	require.True(t, result.ProjectBudget.Valid)
	assert.True(t, result.ProjectBudget.Decimal.Equal(money(100_000_000)))
	assert.True(t, result.ProjectedTotal.Equal(money(95_000_000)))
	require.True(t, result.Remaining.Valid)
	assert.True(t, result.Remaining.Decimal.Equal(money(5_000_000)))

	committed := ledger.orders["po-pending"]
	assert.Equal(t, entity.POStatusApproved, committed.Status)
	require.NotNil(t, committed.ApprovedBy)
	assert.Equal(t, "user-1", *committed.ApprovedBy)
	require.NotNil(t, committed.ApprovedAt)

	assert.Contains(t, rc.deleted, "po:po-pending")
}

func TestApproveBudgetExceeded(t *testing.T) {
	ledger := newFakeLedger()
	budget := int64(100_000_000)
	seedProject(ledger, "project-1", &budget)
	seedPO(ledger, "po-approved", "project-1", 80_000_000, entity.POStatusApproved)
	seedPO(ledger, "po-pending", "project-1", 25_000_000, entity.POStatusPendingApproval)

	svc, rc := newTestService(ledger, NullBudgetUnlimited)
	_, err := svc.Approve(context.Background(), "po-pending", "user-1")

	var exceeded *BudgetExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.True(t, exceeded.ProjectBudget.Equal(money(100_000_000)))
	assert.True(t, exceeded.CurrentApprovedTotal.Equal(money(80_000_000)))
	assert.True(t, exceeded.POAmount.Equal(money(25_000_000)))
	assert.True(t, exceeded.OverBy.Equal(money(5_000_000)))

	// Rejection must be a no-op: the order is untouched and nothing was
	// invalidated.
	po := ledger.orders["po-pending"]
	assert.Equal(t, entity.POStatusPendingApproval, po.Status)
	assert.Nil(t, po.ApprovedBy)
	assert.Nil(t, po.ApprovedAt)
	assert.Empty(t, rc.deleted)
}

func TestApproveInvalidState(t *testing.T) {
	ledger := newFakeLedger()
	budget := int64(100_000_000)
	seedProject(ledger, "project-1", &budget)
	seedPO(ledger, "po-draft", "project-1", 1_000_000, entity.POStatusDraft)

	svc, _ := newTestService(ledger, NullBudgetUnlimited)
	_, err := svc.Approve(context.Background(), "po-draft", "user-1")

	var invalid *InvalidStateError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, entity.POStatusDraft, invalid.Current)
	assert.Equal(t, entity.POStatusDraft, ledger.orders["po-draft"].Status)
}

func TestApproveNotFound(t *testing.T) {
	svc, _ := newTestService(newFakeLedger(), NullBudgetUnlimited)
	_, err := svc.Approve(context.Background(), "missing", "user-1")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.POID)
}

func TestApproveNullBudgetUnlimited(t *testing.T) {
	ledger := newFakeLedger()
	seedProject(ledger, "project-1", nil)
	seedPO(ledger, "po-pending", "project-1", 999_000_000, entity.POStatusPendingApproval)

	svc, _ := newTestService(ledger, NullBudgetUnlimited)
	result, err := svc.Approve(context.Background(), "po-pending", "user-1")
	require.NoError(t, err)

	assert.False(t, result.ProjectBudget.Valid)
	assert.False(t, result.Remaining.Valid)
	assert.True(t, result.ProjectedTotal.Equal(money(999_000_000)))
}

func TestApproveNullBudgetZeroPolicy(t *testing.T) {
	ledger := newFakeLedger()
	seedProject(ledger, "project-1", nil)
	seedPO(ledger, "po-pending", "project-1", 1, entity.POStatusPendingApproval)

	svc, _ := newTestService(ledger, NullBudgetZero)
	_, err := svc.Approve(context.Background(), "po-pending", "user-1")

	var exceeded *BudgetExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.True(t, exceeded.ProjectBudget.IsZero())
	assert.True(t, exceeded.OverBy.Equal(money(1)))
}

func TestApproveZeroAmountAlwaysPasses(t *testing.T) {
	ledger := newFakeLedger()
	seedProject(ledger, "project-1", nil)
	seedPO(ledger, "po-zero", "project-1", 0, entity.POStatusPendingApproval)

	svc, _ := newTestService(ledger, NullBudgetZero)
	result, err := svc.Approve(context.Background(), "po-zero", "user-1")
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusApproved, result.Status)
}

func TestApproveConcurrentSingleWinner(t *testing.T) {
	ledger := newFakeLedger()
	budget := int64(100_000_000)
	seedProject(ledger, "project-1", &budget)
	seedPO(ledger, "po-pending", "project-1", 10_000_000, entity.POStatusPendingApproval)

	svc, _ := newTestService(ledger, NullBudgetUnlimited)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Approve(context.Background(), "po-pending", "user-1")
		}(i)
	}
	wg.Wait()

	var successes int
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		var concurrent *ConcurrentModificationError
		var invalid *InvalidStateError
		loserMatched := errors.As(err, &concurrent) || errors.As(err, &invalid)
		assert.True(t, loserMatched, "unexpected loser error: %v", err)
	}
	assert.Equal(t, 1, successes)

	// The order must never end half-approved.
	po := ledger.orders["po-pending"]
	assert.Equal(t, entity.POStatusApproved, po.Status)
	assert.NotNil(t, po.ApprovedBy)
	assert.NotNil(t, po.ApprovedAt)
}

func TestApproveRequiresIdentifiers(t *testing.T) {
	svc, _ := newTestService(newFakeLedger(), NullBudgetUnlimited)

	_, err := svc.Approve(context.Background(), "", "user-1")
	require.Error(t, err)

	_, err = svc.Approve(context.Background(), "po-1", "")
	require.Error(t, err)
}
