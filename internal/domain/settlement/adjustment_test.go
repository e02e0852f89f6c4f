package settlement

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(f float64) *float64 { return &f }

func TestParseAdjustmentType(t *testing.T) {
	tests := []struct {
		tag  string
		want AdjustmentType
	}{
		{"STONE_LABOR", AdjustmentStoneLabor},
		{"MATERIAL_MASTER", AdjustmentMaterialMaster},
		{"DECOR", AdjustmentDecor},
		{"DECOR:RIBBON", AdjustmentDecor},
		{"PLATING_MASTER", AdjustmentPlatingMaster},
		{"ABSORB", AdjustmentPolicyAbsorb},
		{"ABSORB:GIFT_BOX", AdjustmentPolicyAbsorb},
		{"POLICY_ABSORB", AdjustmentPolicyAbsorb},
		{"POLICY_ABSORB_DELTA", AdjustmentPolicyAbsorbDelta},
		{"SNAPSHOT_RECONCILE", AdjustmentSnapshotReconcile},
		{"  STONE_LABOR  ", AdjustmentStoneLabor},
		{"something-else", AdjustmentOther},
		{"", AdjustmentOther},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAdjustmentType(tt.tag))
		})
	}
}

func TestAdjustmentTypeCoreVisible(t *testing.T) {
	visible := []AdjustmentType{AdjustmentStoneLabor, AdjustmentDecor, AdjustmentPlatingMaster, AdjustmentOther}
	hidden := []AdjustmentType{AdjustmentMaterialMaster, AdjustmentPolicyAbsorb, AdjustmentPolicyAbsorbDelta, AdjustmentSnapshotReconcile}

	for _, typ := range visible {
		assert.True(t, typ.CoreVisible(), "%s should be core-visible", typ)
	}
	for _, typ := range hidden {
		assert.False(t, typ.CoreVisible(), "%s should be hidden", typ)
	}
}

func TestNormalizeResolvesSellByPreference(t *testing.T) {
	n := NewAdjustmentNormalizer()

	t.Run("metadata sell wins over amount", func(t *testing.T) {
		items := n.Normalize([]RawAdjustment{{
			ID:      "a1",
			TypeTag: "STONE_LABOR",
			Label:   "큐빅",
			Amount:  fp(9999),
			Meta:    &RawAdjustmentMeta{SellKRW: fp(12000)},
		}})
		require.Len(t, items, 1)
		assert.True(t, items[0].SellKRW.Equal(d("12000")), "sell = %s", items[0].SellKRW)
	})

	t.Run("amount wins over unit price", func(t *testing.T) {
		items := n.Normalize([]RawAdjustment{{
			ID:      "a2",
			TypeTag: "STONE_LABOR",
			Amount:  fp(8000),
			Meta:    &RawAdjustmentMeta{UnitPriceKRW: fp(1000), QtyApplied: fp(3)},
		}})
		require.Len(t, items, 1)
		assert.True(t, items[0].SellKRW.Equal(d("8000")))
	})

	t.Run("unit price times quantity", func(t *testing.T) {
		items := n.Normalize([]RawAdjustment{{
			ID:      "a3",
			TypeTag: "STONE_LABOR",
			Meta:    &RawAdjustmentMeta{UnitPriceKRW: fp(1500), QtyApplied: fp(4)},
		}})
		require.Len(t, items, 1)
		assert.True(t, items[0].SellKRW.Equal(d("6000")))
	})

	t.Run("nothing resolvable falls back to zero", func(t *testing.T) {
		items := n.Normalize([]RawAdjustment{{ID: "a4", TypeTag: "OTHER", Label: "메모"}})
		require.Len(t, items, 1)
		assert.True(t, items[0].SellKRW.IsZero())
	})
}

func TestNormalizeDropsNonFiniteEntries(t *testing.T) {
	n := NewAdjustmentNormalizer()

	items := n.Normalize([]RawAdjustment{
		{ID: "bad-nan", TypeTag: "STONE_LABOR", Amount: fp(math.NaN())},
		{ID: "bad-inf", TypeTag: "STONE_LABOR", Meta: &RawAdjustmentMeta{SellKRW: fp(math.Inf(1))}},
		{ID: "good", TypeTag: "STONE_LABOR", Amount: fp(5000)},
	})

	require.Len(t, items, 1)
	assert.Equal(t, "good", items[0].ID)
}

func TestNormalizeNonFiniteOptionalFieldsBecomeNil(t *testing.T) {
	n := NewAdjustmentNormalizer()

	items := n.Normalize([]RawAdjustment{{
		ID:      "q1",
		TypeTag: "STONE_LABOR",
		Amount:  fp(5000),
		Meta: &RawAdjustmentMeta{
			QtyApplied: fp(math.NaN()),
			CostKRW:    fp(2000),
			MarginKRW:  fp(math.Inf(-1)),
		},
	}})

	require.Len(t, items, 1)
	assert.Nil(t, items[0].QtyApplied)
	assert.Nil(t, items[0].MarginKRW)
	require.NotNil(t, items[0].CostKRW)
	assert.True(t, items[0].CostKRW.Equal(d("2000")))
}

func TestNormalizeMaterialMasterHandling(t *testing.T) {
	n := NewAdjustmentNormalizer()

	t.Run("plain material-master rows are dropped", func(t *testing.T) {
		tagged := RawAdjustment{ID: "m1", TypeTag: "MATERIAL_MASTER", Amount: fp(3000)}
		classed := RawAdjustment{ID: "m2", TypeTag: "OTHER", Meta: &RawAdjustmentMeta{Class: "MATERIAL_MASTER"}}
		sourced := RawAdjustment{ID: "m3", TypeTag: "OTHER", Meta: &RawAdjustmentMeta{Source: SourceMasterMaterialLabor}}

		items := n.Normalize([]RawAdjustment{tagged, classed, sourced})
		assert.Empty(t, items)
	})

	t.Run("decoration-flavored rows are kept and relabeled", func(t *testing.T) {
		items := n.Normalize([]RawAdjustment{{
			ID:      "m4",
			TypeTag: "MATERIAL_MASTER",
			Label:   "장식 리본",
			Amount:  fp(4000),
		}})
		require.Len(t, items, 1)
		assert.Equal(t, AdjustmentDecor, items[0].Type)
		assert.Equal(t, "[장식] 리본", items[0].Label)
	})

	t.Run("metadata item label names the relabeled row", func(t *testing.T) {
		items := n.Normalize([]RawAdjustment{{
			ID:      "m5",
			TypeTag: "MATERIAL_MASTER",
			Label:   "재질 항목",
			Amount:  fp(4000),
			Meta:    &RawAdjustmentMeta{ItemLabel: "장식 체인"},
		}})
		require.Len(t, items, 1)
		assert.Equal(t, "[장식] 체인", items[0].Label)
	})
}

func TestNormalizeBuildsReason(t *testing.T) {
	n := NewAdjustmentNormalizer()

	items := n.Normalize([]RawAdjustment{{
		ID:      "r1",
		TypeTag: "OTHER",
		Amount:  fp(1000),
		Meta: &RawAdjustmentMeta{
			ItemType:   "부속",
			ItemLabel:  "장식 펜던트",
			ReasonNote: "고객 요청",
		},
	}})

	require.Len(t, items, 1)
	assert.Equal(t, "부속 / [장식] 펜던트 / 고객 요청", items[0].Reason)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := NewAdjustmentNormalizer()
	raw := []RawAdjustment{
		{ID: "a", TypeTag: "STONE_LABOR", Label: "큐빅", Amount: fp(12000)},
		{ID: "b", TypeTag: "DECOR", Label: "장식 리본", Amount: fp(3000)},
	}

	first := n.Normalize(raw)
	second := n.Normalize(raw)
	assert.Equal(t, first, second)
}

func TestNormalizeDecorationLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"리본", "[장식] 리본"},
		{"장식 리본", "[장식] 리본"},
		{"[장식] 리본", "[장식] 리본"},
		{"장식", "[장식]"},
		{"", "[장식]"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDecorationLabel(tt.in))
		})
	}
}

func TestAdjustmentItemIsDecorationLike(t *testing.T) {
	assert.True(t, AdjustmentItem{Type: AdjustmentDecor}.IsDecorationLike())
	assert.True(t, AdjustmentItem{Type: AdjustmentPolicyAbsorb}.IsDecorationLike())
	assert.True(t, AdjustmentItem{Type: AdjustmentPolicyAbsorbDelta}.IsDecorationLike())
	assert.True(t, AdjustmentItem{Type: AdjustmentOther, Label: "장식 체인"}.IsDecorationLike())
	assert.False(t, AdjustmentItem{Type: AdjustmentStoneLabor, Label: "큐빅"}.IsDecorationLike())
}

func TestSumSellAndSumCost(t *testing.T) {
	items := []AdjustmentItem{
		{SellKRW: d("1000"), CostKRW: dp("400")},
		{SellKRW: d("2500")},
		{SellKRW: d("-500"), CostKRW: dp("100")},
	}
	assert.True(t, SumSell(items).Equal(d("3000")))
	assert.True(t, SumCost(items).Equal(d("500")))
}
