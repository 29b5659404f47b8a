package approval

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    NullBudgetPolicy
		wantErr bool
	}{
		{input: "unlimited", want: NullBudgetUnlimited},
		{input: "zero", want: NullBudgetZero},
		{input: "", want: NullBudgetUnlimited},
		{input: "strict", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("input="+tt.input, func(t *testing.T) {
			got, err := ParsePolicy(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateBudget(t *testing.T) {
	ceiling := func(n int64) decimal.NullDecimal {
		return decimal.NewNullDecimal(decimal.NewFromInt(n))
	}
	noCeiling := decimal.NullDecimal{}

	tests := []struct {
		name          string
		policy        NullBudgetPolicy
		ceiling       decimal.NullDecimal
		approved      int64
		amount        int64
		wantRemaining int64
		wantOverBy    int64
		wantExceeded  bool
		wantNoLimit   bool
	}{
		{
			name:          "within budget",
			policy:        NullBudgetUnlimited,
			ceiling:       ceiling(100_000_000),
			approved:      80_000_000,
			amount:        15_000_000,
			wantRemaining: 5_000_000,
		},
		{
			name:         "over budget",
			policy:       NullBudgetUnlimited,
			ceiling:      ceiling(100_000_000),
			approved:     80_000_000,
			amount:       25_000_000,
			wantExceeded: true,
			wantOverBy:   5_000_000,
		},
		{
			name:          "exactly at the ceiling passes",
			policy:        NullBudgetUnlimited,
			ceiling:       ceiling(100),
			approved:      60,
			amount:        40,
			wantRemaining: 0,
		},
		{
			name:         "one over the ceiling rejects",
			policy:       NullBudgetUnlimited,
			ceiling:      ceiling(100),
			approved:     60,
			amount:       41,
			wantExceeded: true,
			wantOverBy:   1,
		},
		{
			name:        "null ceiling unlimited",
			policy:      NullBudgetUnlimited,
			ceiling:     noCeiling,
			approved:    0,
			amount:      1_000_000_000,
			wantNoLimit: true,
		},
		{
			name:         "null ceiling zero policy rejects any spend",
			policy:       NullBudgetZero,
			ceiling:      noCeiling,
			approved:     0,
			amount:       1,
			wantExceeded: true,
			wantOverBy:   1,
		},
		{
			name:          "null ceiling zero policy allows zero amount",
			policy:        NullBudgetZero,
			ceiling:       noCeiling,
			approved:      0,
			amount:        0,
			wantRemaining: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := evaluateBudget(tt.policy, tt.ceiling, decimal.NewFromInt(tt.approved), decimal.NewFromInt(tt.amount))
			if tt.wantExceeded {
				var exceeded *BudgetExceededError
				require.ErrorAs(t, err, &exceeded)
				assert.True(t, exceeded.OverBy.Equal(decimal.NewFromInt(tt.wantOverBy)),
					"over by %s", exceeded.OverBy)
				return
			}
			require.NoError(t, err)
			assert.True(t, summary.Projected.Equal(decimal.NewFromInt(tt.approved+tt.amount)))
			if tt.wantNoLimit {
				assert.False(t, summary.Ceiling.Valid)
				assert.False(t, summary.Remaining.Valid)
				return
			}
			require.True(t, summary.Remaining.Valid)
			assert.True(t, summary.Remaining.Decimal.Equal(decimal.NewFromInt(tt.wantRemaining)),
				"remaining %s", summary.Remaining.Decimal)
		})
	}
}
