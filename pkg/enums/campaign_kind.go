package enums

import "fmt"

// CampaignKind distinguishes the two automatic promotion variants.
type CampaignKind string

const (
	CampaignKindGift     CampaignKind = "gift"
	CampaignKindDiscount CampaignKind = "discount"
)

var validCampaignKinds = []CampaignKind{
	CampaignKindGift,
	CampaignKindDiscount,
}

// String implements fmt.Stringer.
func (c CampaignKind) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CampaignKind.
func (c CampaignKind) IsValid() bool {
	for _, candidate := range validCampaignKinds {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCampaignKind converts raw input into a CampaignKind.
func ParseCampaignKind(value string) (CampaignKind, error) {
	for _, candidate := range validCampaignKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid campaign kind %q", value)
}
