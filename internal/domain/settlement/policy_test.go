package settlement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyReconcilerNilPolicyIsNoop(t *testing.T) {
	r := NewPolicyReconciler()
	items := []AdjustmentItem{{ID: "a", Type: AdjustmentStoneLabor, SellKRW: d("1000")}}

	extended, synthetic := r.Apply(items, nil)
	assert.Nil(t, synthetic)
	assert.Equal(t, items, extended)
}

func TestPolicyReconcilerAbsorbsFullAmountWithoutDecorItems(t *testing.T) {
	r := NewPolicyReconciler()
	items := []AdjustmentItem{{ID: "a", Type: AdjustmentStoneLabor, SellKRW: d("1000")}}
	policy := &PricingPolicySnapshot{PolicyAbsorbDecorTotalKRW: d("5000")}

	extended, synthetic := r.Apply(items, policy)
	require.NotNil(t, synthetic)
	assert.Equal(t, "policy-absorb", synthetic.ID)
	assert.Equal(t, AdjustmentPolicyAbsorb, synthetic.Type)
	assert.Equal(t, "[장식] 정책 흡수", synthetic.Label)
	assert.True(t, synthetic.SellKRW.Equal(d("5000")))
	require.NotNil(t, synthetic.CostKRW)
	assert.True(t, synthetic.CostKRW.IsZero())
	require.NotNil(t, synthetic.MarginKRW)
	assert.True(t, synthetic.MarginKRW.Equal(d("5000")))
	assert.Equal(t, SourcePricingPolicy, synthetic.Source)
	assert.Len(t, extended, 2)
	assert.Equal(t, *synthetic, extended[len(extended)-1])
}

func TestPolicyReconcilerBridgesRemainder(t *testing.T) {
	r := NewPolicyReconciler()
	items := []AdjustmentItem{
		{ID: "decor", Type: AdjustmentDecor, Label: "[장식] 리본", SellKRW: d("3000")},
	}
	policy := &PricingPolicySnapshot{PolicyAbsorbDecorTotalKRW: d("5000")}

	extended, synthetic := r.Apply(items, policy)
	require.NotNil(t, synthetic)
	assert.Equal(t, "policy-absorb-delta", synthetic.ID)
	assert.Equal(t, AdjustmentPolicyAbsorbDelta, synthetic.Type)
	assert.True(t, synthetic.SellKRW.Equal(d("2000")), "remainder = %s", synthetic.SellKRW)
	assert.Len(t, extended, 2)
}

func TestPolicyReconcilerWithinToleranceAddsNothing(t *testing.T) {
	r := NewPolicyReconciler()
	items := []AdjustmentItem{
		{ID: "decor", Type: AdjustmentDecor, SellKRW: d("4999.6")},
	}
	policy := &PricingPolicySnapshot{PolicyAbsorbDecorTotalKRW: d("5000")}

	extended, synthetic := r.Apply(items, policy)
	assert.Nil(t, synthetic)
	assert.Len(t, extended, 1)
}

func TestPolicyReconcilerNegativeAmountClampsToZero(t *testing.T) {
	r := NewPolicyReconciler()
	policy := &PricingPolicySnapshot{PolicyAbsorbDecorTotalKRW: d("-3000")}

	_, synthetic := r.Apply(nil, policy)
	assert.Nil(t, synthetic)
}

func TestPolicyReconcilerOverageAddsNothing(t *testing.T) {
	r := NewPolicyReconciler()
	items := []AdjustmentItem{
		{ID: "decor", Type: AdjustmentDecor, SellKRW: d("8000")},
	}
	policy := &PricingPolicySnapshot{PolicyAbsorbDecorTotalKRW: d("5000")}

	// Items exceeding the policy total are left alone; the bridge only fills
	// shortfalls.
	_, synthetic := r.Apply(items, policy)
	assert.Nil(t, synthetic)
}

func TestPolicyReconcilerCountsLabelMarkedItems(t *testing.T) {
	r := NewPolicyReconciler()
	items := []AdjustmentItem{
		{ID: "o", Type: AdjustmentOther, Label: "장식 체인", SellKRW: d("5000")},
	}
	policy := &PricingPolicySnapshot{PolicyAbsorbDecorTotalKRW: d("5000")}

	_, synthetic := r.Apply(items, policy)
	assert.Nil(t, synthetic)
}

func TestPolicyReconcilerDoesNotMutateInput(t *testing.T) {
	r := NewPolicyReconciler()
	items := make([]AdjustmentItem, 1, 4)
	items[0] = AdjustmentItem{ID: "a", Type: AdjustmentStoneLabor, SellKRW: decimal.Zero}
	policy := &PricingPolicySnapshot{PolicyAbsorbDecorTotalKRW: d("5000")}

	extended, _ := r.Apply(items, policy)
	require.Len(t, extended, 2)
	assert.Len(t, items, 1)
	// Spare capacity in the caller's slice must never be written through.
	assert.Equal(t, "a", items[:1][0].ID)
}
