package usage

import (
	"strings"
	"time"
)

const (
	TierBasic        = "basic"
	TierProfessional = "professional"
	TierEnterprise   = "enterprise"
)

// Usage windows roll every 30 days.
const window = 30 * 24 * time.Hour

// quotaForTier returns the per-window assessment quota; -1 is unlimited.
func quotaForTier(tier string) int {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case TierProfessional:
		return 250
	case TierEnterprise:
		return -1
	default:
		return 25
	}
}

// NormalizeTier maps arbitrary input onto a known tier, defaulting to basic.
func NormalizeTier(tier string) string {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case TierProfessional:
		return TierProfessional
	case TierEnterprise:
		return TierEnterprise
	default:
		return TierBasic
	}
}

func defaultUsage(now time.Time) Usage {
	return Usage{
		Tier:     TierBasic,
		Limit:    quotaForTier(TierBasic),
		Used:     0,
		ResetsAt: now.Add(window),
	}
}
