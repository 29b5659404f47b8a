package approval

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/constructflow/constructflow/internal/entity"
)

// NotFoundError reports that no purchase order matched the requested id.
type NotFoundError struct {
	POID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("purchase order %s not found", e.POID)
}

// InvalidStateError reports that the purchase order was not pending approval
// when the approval was requested. Current carries the offending status for
// display.
type InvalidStateError struct {
	POID    string
	Current entity.POStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("purchase order %s is not pending approval (status %s)", e.POID, e.Current)
}

// BudgetExceededError reports that approving the purchase order would push
// the project's approved spend over its budget ceiling. All amounts are
// carried so the approver can see the shortfall.
type BudgetExceededError struct {
	ProjectBudget        decimal.Decimal
	CurrentApprovedTotal decimal.Decimal
	POAmount             decimal.Decimal
	OverBy               decimal.Decimal
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("budget exceeded: approving %s on top of %s approved would pass the %s ceiling by %s",
		e.POAmount, e.CurrentApprovedTotal, e.ProjectBudget, e.OverBy)
}

// ConcurrentModificationError reports that the purchase order's status
// changed between the precondition check and the commit. Callers must
// re-fetch and show current state rather than retry blindly.
type ConcurrentModificationError struct {
	POID string
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("purchase order %s was modified concurrently", e.POID)
}
