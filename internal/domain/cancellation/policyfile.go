package cancellation

import (
	"os"
	"time"

	"booking-reconciler/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type policyFile struct {
	Timezone string           `yaml:"timezone"`
	Tiers    []policyFileTier `yaml:"tiers"`
}

type policyFileTier struct {
	Tier           string          `yaml:"tier"`
	MinHours       decimal.Decimal `yaml:"min_hours"`
	PenaltyPercent decimal.Decimal `yaml:"penalty_percent"`
}

// LoadPolicyFile reads a YAML tier table. A timezone in the file overrides loc.
//
//	timezone: America/Los_Angeles
//	tiers:
//	  - {tier: free, min_hours: 72, penalty_percent: 0}
//	  - {tier: moderate, min_hours: 24, penalty_percent: 25}
//	  - {tier: late, min_hours: 0, penalty_percent: 50}
func LoadPolicyFile(path string, loc *time.Location) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, errs.Wrap(err, "read policy file")
	}
	return ParsePolicy(data, loc)
}

func ParsePolicy(data []byte, loc *time.Location) (Policy, error) {
	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Policy{}, errs.Mark(errs.Wrap(err, "decode policy file"), ErrInvalidPolicy)
	}

	if f.Timezone != "" {
		l, err := time.LoadLocation(f.Timezone)
		if err != nil {
			return Policy{}, errs.Mark(errs.Wrap(err, "load policy timezone"), ErrInvalidPolicy)
		}
		loc = l
	}

	rules := make([]TierRule, 0, len(f.Tiers))
	for _, t := range f.Tiers {
		rule, err := t.toRule()
		if err != nil {
			return Policy{}, err
		}
		rules = append(rules, rule)
	}
	return NewPolicy(loc, rules)
}

func (t policyFileTier) toRule() (TierRule, error) {
	bp := t.PenaltyPercent.Mul(decimal.NewFromInt(100))
	if !bp.Equal(bp.Truncate(0)) {
		return TierRule{}, errs.Markf(ErrInvalidPolicy, "tier %q penalty has more than two decimals", t.Tier)
	}
	minutes := t.MinHours.Mul(decimal.NewFromInt(60))
	if !minutes.Equal(minutes.Truncate(0)) {
		return TierRule{}, errs.Markf(ErrInvalidPolicy, "tier %q threshold must be whole minutes", t.Tier)
	}
	return TierRule{
		Tier:               Tier(t.Tier),
		MinBeforePickup:    time.Duration(minutes.IntPart()) * time.Minute,
		PenaltyBasisPoints: bp.IntPart(),
	}, nil
}
