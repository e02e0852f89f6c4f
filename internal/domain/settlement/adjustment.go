package settlement

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// AdjustmentType is the closed set of adjustment categories. The raw order-screen
// blob carries free-form type tags; normalization collapses them into this enum so
// a new category is a compiler-enforced change, not a silent fallthrough.
type AdjustmentType string

const (
	AdjustmentStoneLabor        AdjustmentType = "STONE_LABOR"
	AdjustmentMaterialMaster    AdjustmentType = "MATERIAL_MASTER"
	AdjustmentDecor             AdjustmentType = "DECOR"
	AdjustmentPlatingMaster     AdjustmentType = "PLATING_MASTER"
	AdjustmentPolicyAbsorb      AdjustmentType = "POLICY_ABSORB"
	AdjustmentPolicyAbsorbDelta AdjustmentType = "POLICY_ABSORB_DELTA"
	AdjustmentSnapshotReconcile AdjustmentType = "SNAPSHOT_RECONCILE"
	AdjustmentOther             AdjustmentType = "OTHER"
)

// IsValid checks if the adjustment type is valid
func (t AdjustmentType) IsValid() bool {
	switch t {
	case AdjustmentStoneLabor, AdjustmentMaterialMaster, AdjustmentDecor,
		AdjustmentPlatingMaster, AdjustmentPolicyAbsorb, AdjustmentPolicyAbsorbDelta,
		AdjustmentSnapshotReconcile, AdjustmentOther:
		return true
	}
	return false
}

// String returns the string representation
func (t AdjustmentType) String() string {
	return string(t)
}

// CoreVisible reports whether items of this type belong to the everyday
// adjustment breakdown a counter clerk sees. Material-master leftovers and the
// synthetic reconciliation bridge rows are excluded so the snapshot comparison
// never double counts.
func (t AdjustmentType) CoreVisible() bool {
	switch t {
	case AdjustmentStoneLabor, AdjustmentDecor, AdjustmentPlatingMaster, AdjustmentOther:
		return true
	case AdjustmentMaterialMaster, AdjustmentPolicyAbsorb, AdjustmentPolicyAbsorbDelta,
		AdjustmentSnapshotReconcile:
		return false
	}
	return false
}

// ParseAdjustmentType maps a raw type tag onto the closed enum by prefix.
// Tags like "DECOR:RIBBON" and "ABSORB:GIFT_BOX" carry a subtype after the colon.
func ParseAdjustmentType(tag string) AdjustmentType {
	head, _, _ := strings.Cut(strings.TrimSpace(tag), ":")
	switch head {
	case "STONE_LABOR":
		return AdjustmentStoneLabor
	case "MATERIAL_MASTER":
		return AdjustmentMaterialMaster
	case "DECOR":
		return AdjustmentDecor
	case "PLATING_MASTER":
		return AdjustmentPlatingMaster
	case "ABSORB", "POLICY_ABSORB":
		return AdjustmentPolicyAbsorb
	case "POLICY_ABSORB_DELTA":
		return AdjustmentPolicyAbsorbDelta
	case "SNAPSHOT_RECONCILE":
		return AdjustmentSnapshotReconcile
	default:
		return AdjustmentOther
	}
}

// Adjustment source markers carried in the metadata blob or stamped onto
// synthetic reconciliation rows.
const (
	SourceMasterMaterialLabor = "MASTER_MATERIAL_LABOR"
	SourcePricingPolicy       = "PRICING_POLICY"
	SourcePrefillSnapshot     = "PREFILL_SNAPSHOT"
)

// DecorationMarker flags an entry as decoration-flavored wherever it appears in
// a label or metadata field.
const DecorationMarker = "장식"

// RawAdjustment is one loosely structured entry from a line's ad-hoc adjustment
// blob, exactly as the order screen captured it. Numeric fields are pointers
// because the screen omits what the operator never touched.
type RawAdjustment struct {
	ID      string             `json:"id"`
	TypeTag string             `json:"type"`
	Label   string             `json:"label"`
	Amount  *float64           `json:"amount"`
	Meta    *RawAdjustmentMeta `json:"meta"`
}

// RawAdjustmentMeta is the nested metadata object of a raw adjustment entry.
type RawAdjustmentMeta struct {
	SellKRW      *float64 `json:"sell_krw"`
	UnitPriceKRW *float64 `json:"unit_price_krw"`
	QtyApplied   *float64 `json:"qty_applied"`
	CostKRW      *float64 `json:"cost_krw"`
	MarginKRW    *float64 `json:"margin_krw"`
	Source       string   `json:"source"`
	Class        string   `json:"class"`
	ItemType     string   `json:"item_type"`
	ItemLabel    string   `json:"item_label"`
	ReasonNote   string   `json:"reason_note"`
}

// AdjustmentItem is a typed, normalized adjustment row. Items are recomputed per
// view and never persisted.
type AdjustmentItem struct {
	ID         string           `json:"id"`
	Type       AdjustmentType   `json:"type"`
	Label      string           `json:"label"`
	QtyApplied *decimal.Decimal `json:"qty_applied,omitempty"`
	SellKRW    decimal.Decimal  `json:"sell_krw"`
	CostKRW    *decimal.Decimal `json:"cost_krw,omitempty"`
	MarginKRW  *decimal.Decimal `json:"margin_krw,omitempty"`
	Source     string           `json:"source,omitempty"`
	Reason     string           `json:"reason,omitempty"`
}

// IsDecorationLike reports whether the item counts toward the policy's declared
// decoration absorption: decoration/absorb typed, or decoration-marked by label.
func (i AdjustmentItem) IsDecorationLike() bool {
	switch i.Type {
	case AdjustmentDecor, AdjustmentPolicyAbsorb, AdjustmentPolicyAbsorbDelta:
		return true
	}
	return strings.Contains(i.Label, DecorationMarker)
}

// AdjustmentNormalizer parses a line's raw adjustment blob into typed items.
// It is pure: the same blob always normalizes to the same item list.
type AdjustmentNormalizer struct{}

// NewAdjustmentNormalizer creates a normalizer.
func NewAdjustmentNormalizer() *AdjustmentNormalizer {
	return &AdjustmentNormalizer{}
}

// Normalize converts raw entries into ordered AdjustmentItems.
//
// Material-master entries are derived rows (the master already priced them into
// the line) and are dropped, except decoration-flavored ones, which are kept and
// relabeled to the normalized "[장식] <name>" form. An entry whose resolved sell
// amount is not a finite number is dropped by itself; one corrupt entry must
// never fail the whole line.
func (n *AdjustmentNormalizer) Normalize(raw []RawAdjustment) []AdjustmentItem {
	items := make([]AdjustmentItem, 0, len(raw))
	for _, entry := range raw {
		if item, ok := n.normalizeEntry(entry); ok {
			items = append(items, item)
		}
	}
	return items
}

func (n *AdjustmentNormalizer) normalizeEntry(entry RawAdjustment) (AdjustmentItem, bool) {
	meta := entry.Meta
	if meta == nil {
		meta = &RawAdjustmentMeta{}
	}

	itemType := ParseAdjustmentType(entry.TypeTag)
	label := entry.Label

	if n.isMaterialMaster(itemType, meta) {
		if !n.isDecorationFlavored(entry, meta) {
			return AdjustmentItem{}, false
		}
		label = NormalizeDecorationLabel(n.decorationName(entry, meta))
		itemType = AdjustmentDecor
	}

	sell, ok := n.resolveSell(entry, meta)
	if !ok {
		return AdjustmentItem{}, false
	}

	return AdjustmentItem{
		ID:         entry.ID,
		Type:       itemType,
		Label:      label,
		QtyApplied: finiteDecimalPtr(meta.QtyApplied),
		SellKRW:    sell,
		CostKRW:    finiteDecimalPtr(meta.CostKRW),
		MarginKRW:  finiteDecimalPtr(meta.MarginKRW),
		Source:     meta.Source,
		Reason:     n.buildReason(meta),
	}, true
}

// isMaterialMaster detects derived material-master rows by type prefix, class
// marker, or source marker.
func (n *AdjustmentNormalizer) isMaterialMaster(itemType AdjustmentType, meta *RawAdjustmentMeta) bool {
	return itemType == AdjustmentMaterialMaster ||
		meta.Class == string(AdjustmentMaterialMaster) ||
		meta.Source == SourceMasterMaterialLabor
}

// isDecorationFlavored checks the label and metadata for a decoration marker.
func (n *AdjustmentNormalizer) isDecorationFlavored(entry RawAdjustment, meta *RawAdjustmentMeta) bool {
	return strings.Contains(entry.Label, DecorationMarker) ||
		strings.Contains(meta.ItemLabel, DecorationMarker) ||
		strings.Contains(meta.ItemType, DecorationMarker) ||
		strings.Contains(meta.Class, DecorationMarker)
}

// decorationName picks the most specific name available for a relabeled
// decoration row.
func (n *AdjustmentNormalizer) decorationName(entry RawAdjustment, meta *RawAdjustmentMeta) string {
	if meta.ItemLabel != "" {
		return meta.ItemLabel
	}
	return entry.Label
}

// resolveSell resolves the item's sell amount by preference order: explicit
// metadata sell, top-level amount, unit price × applied quantity, zero.
// Returns ok=false when the resolved value is not finite.
func (n *AdjustmentNormalizer) resolveSell(entry RawAdjustment, meta *RawAdjustmentMeta) (decimal.Decimal, bool) {
	var sell float64
	switch {
	case meta.SellKRW != nil:
		sell = *meta.SellKRW
	case entry.Amount != nil:
		sell = *entry.Amount
	case meta.UnitPriceKRW != nil && meta.QtyApplied != nil:
		sell = *meta.UnitPriceKRW * *meta.QtyApplied
	default:
		return decimal.Zero, true
	}
	if !isFinite(sell) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(sell), true
}

// buildReason joins the metadata's item-type, item-label, and free-text note,
// skipping empties and normalizing decoration markers in the label.
func (n *AdjustmentNormalizer) buildReason(meta *RawAdjustmentMeta) string {
	parts := make([]string, 0, 3)
	if meta.ItemType != "" {
		parts = append(parts, meta.ItemType)
	}
	if meta.ItemLabel != "" {
		label := meta.ItemLabel
		if strings.Contains(label, DecorationMarker) {
			label = NormalizeDecorationLabel(label)
		}
		parts = append(parts, label)
	}
	if meta.ReasonNote != "" {
		parts = append(parts, meta.ReasonNote)
	}
	return strings.Join(parts, " / ")
}

// NormalizeDecorationLabel rewrites a decoration-flavored name into the
// canonical "[장식] <name>" form, stripping any marker already embedded in it.
func NormalizeDecorationLabel(name string) string {
	cleaned := strings.ReplaceAll(name, "["+DecorationMarker+"]", "")
	cleaned = strings.ReplaceAll(cleaned, DecorationMarker, "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "[" + DecorationMarker + "]"
	}
	return "[" + DecorationMarker + "] " + cleaned
}

// SumSell totals the sell amounts of the given items.
func SumSell(items []AdjustmentItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.SellKRW)
	}
	return total
}

// SumCost totals the cost amounts of items that carry one.
func SumCost(items []AdjustmentItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.CostKRW != nil {
			total = total.Add(*item.CostKRW)
		}
	}
	return total
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteDecimalPtr(f *float64) *decimal.Decimal {
	if f == nil || !isFinite(*f) {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}
