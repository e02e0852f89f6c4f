package settlement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BucketKind identifies which settlement bucket a material's weight is owed in.
// Cash-only materials (and unknown codes) fall into BucketNone.
type BucketKind string

const (
	BucketNone   BucketKind = "NONE"
	BucketGold   BucketKind = "GOLD"
	BucketSilver BucketKind = "SILVER"
)

// IsValid checks if the bucket kind is valid
func (k BucketKind) IsValid() bool {
	switch k {
	case BucketNone, BucketGold, BucketSilver:
		return true
	}
	return false
}

// String returns the string representation
func (k BucketKind) String() string {
	return string(k)
}

// NoneMaterialCode is the material code for cash-only lines. Lines carrying it
// have no physical weight concept and are exempt from weight validation.
const NoneMaterialCode = "00"

// MaterialBucket describes how a material code converts into a settlement bucket:
// which bucket its weight belongs to, the purity factor applied to the net weight,
// and whether the per-line silver adjustment factor applies on top.
type MaterialBucket struct {
	Kind                BucketKind
	WeightFactor        decimal.Decimal
	SilverAdjustApplies bool
}

// IsWeighted reports whether the bucket carries physical weight at all.
func (b MaterialBucket) IsWeighted() bool {
	return b.Kind != BucketNone
}

// MaterialTable is an immutable lookup from normalized material codes to buckets.
// Unknown codes classify as BucketNone with a zero factor: the line still carries
// its full cash total, so an unrecognized material must never fail a computation.
type MaterialTable struct {
	buckets map[string]MaterialBucket
}

// NewMaterialTable builds a table from an explicit rule map. The map is copied;
// callers cannot mutate the table afterwards.
func NewMaterialTable(rules map[string]MaterialBucket) *MaterialTable {
	buckets := make(map[string]MaterialBucket, len(rules))
	for code, bucket := range rules {
		buckets[normalizeMaterialCode(code)] = bucket
	}
	return &MaterialTable{buckets: buckets}
}

// DefaultMaterialTable returns the standard purity table used by the trade:
// karat golds 14/18/24 and silvers 925/999. The 925 sterling factor is subject
// to the per-line silver adjustment factor; fine silver 999 is not.
func DefaultMaterialTable() *MaterialTable {
	return NewMaterialTable(map[string]MaterialBucket{
		"":   {Kind: BucketNone, WeightFactor: decimal.Zero},
		"00": {Kind: BucketNone, WeightFactor: decimal.Zero},
		"14": {Kind: BucketGold, WeightFactor: decimal.RequireFromString("0.6435")},
		"18": {Kind: BucketGold, WeightFactor: decimal.RequireFromString("0.825")},
		"24": {Kind: BucketGold, WeightFactor: decimal.NewFromInt(1)},
		"925": {
			Kind:                BucketSilver,
			WeightFactor:        decimal.RequireFromString("0.925"),
			SilverAdjustApplies: true,
		},
		"999": {Kind: BucketSilver, WeightFactor: decimal.NewFromInt(1)},
	})
}

// WithOverrides returns a new table that extends or replaces rows of this one.
// The receiver is untouched.
func (t *MaterialTable) WithOverrides(rules map[string]MaterialBucket) *MaterialTable {
	merged := make(map[string]MaterialBucket, len(t.buckets)+len(rules))
	for code, bucket := range t.buckets {
		merged[code] = bucket
	}
	for code, bucket := range rules {
		merged[normalizeMaterialCode(code)] = bucket
	}
	return &MaterialTable{buckets: merged}
}

// Classify maps a material code to its bucket. Matching is case-sensitive on the
// normalized (whitespace-trimmed) code; anything not in the table is BucketNone.
func (t *MaterialTable) Classify(code string) MaterialBucket {
	if bucket, ok := t.buckets[normalizeMaterialCode(code)]; ok {
		return bucket
	}
	return MaterialBucket{Kind: BucketNone, WeightFactor: decimal.Zero}
}

// Codes returns all material codes the table knows about.
func (t *MaterialTable) Codes() []string {
	codes := make([]string, 0, len(t.buckets))
	for code := range t.buckets {
		codes = append(codes, code)
	}
	return codes
}

func normalizeMaterialCode(code string) string {
	return strings.TrimSpace(code)
}
