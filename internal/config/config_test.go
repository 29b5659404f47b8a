package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsNullBudgetPolicy(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "unlimited", cfg.Approval.NullBudgetPolicy)
}

func TestNewNormalizesNullBudgetPolicy(t *testing.T) {
	t.Setenv("APPROVAL_NULL_BUDGET_POLICY", "  Zero ")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "zero", cfg.Approval.NullBudgetPolicy)
}

func TestNewRejectsUnknownNullBudgetPolicy(t *testing.T) {
	t.Setenv("APPROVAL_NULL_BUDGET_POLICY", "strict")

	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null budget policy")
}
