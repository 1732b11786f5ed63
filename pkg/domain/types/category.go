package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Category is a routing tag produced by classification. The four insurance
// categories are the only knowledge sources; greeting and unrelated are
// sentinels that short-circuit routing.
type Category string

const (
	CategoryPolicyTypes Category = "policy_types"
	CategoryBenefits    Category = "benefits"
	CategoryEligibility Category = "eligibility"
	CategoryClaims      Category = "claims"

	CategoryGreeting  Category = "greeting"
	CategoryUnrelated Category = "unrelated"
)

// InsuranceCategories returns the insurance categories in canonical order.
// Every ordered presentation of per-category results follows this order.
func InsuranceCategories() []Category {
	return []Category{
		CategoryPolicyTypes,
		CategoryBenefits,
		CategoryEligibility,
		CategoryClaims,
	}
}

// AllCategories returns every valid tag, insurance categories first
func AllCategories() []Category {
	return append(InsuranceCategories(), CategoryGreeting, CategoryUnrelated)
}

// IsValid checks if the category is one of the closed set
func (c Category) IsValid() bool {
	switch c {
	case CategoryPolicyTypes,
		CategoryBenefits,
		CategoryEligibility,
		CategoryClaims,
		CategoryGreeting,
		CategoryUnrelated:
		return true
	default:
		return false
	}
}

// IsInsurance reports whether the category has a knowledge source
func (c Category) IsInsurance() bool {
	return c.Rank() >= 0
}

// IsSentinel reports whether the category is greeting or unrelated
func (c Category) IsSentinel() bool {
	return c == CategoryGreeting || c == CategoryUnrelated
}

// Rank returns the canonical position of an insurance category, or -1.
func (c Category) Rank() int {
	switch c {
	case CategoryPolicyTypes:
		return 0
	case CategoryBenefits:
		return 1
	case CategoryEligibility:
		return 2
	case CategoryClaims:
		return 3
	default:
		return -1
	}
}

// Title returns a human readable label used in prompts and fallback output
func (c Category) Title() string {
	switch c {
	case CategoryPolicyTypes:
		return "Policy types"
	case CategoryBenefits:
		return "Benefits"
	case CategoryEligibility:
		return "Eligibility"
	case CategoryClaims:
		return "Claims"
	case CategoryGreeting:
		return "Greeting"
	case CategoryUnrelated:
		return "Unrelated"
	default:
		return string(c)
	}
}

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// ParseCategory normalizes a raw tag (case, surrounding quotes and spaces,
// hyphens or spaces instead of underscores) and validates it.
func ParseCategory(s string) (Category, error) {
	normalized := strings.ToLower(strings.Trim(strings.TrimSpace(s), `"'`+"`"))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)

	c := Category(normalized)
	if !c.IsValid() {
		return "", goerr.New("unknown category", goerr.V("category", s))
	}
	return c, nil
}
