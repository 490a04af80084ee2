package weather

import (
	"strings"

	"github.com/pupwalk/pupwalk/internal/common"
)

// MapCondition normalizes a provider's free-text condition description to
// one of the fixed category tags. Matching is case-insensitive substring,
// first match wins in this precedence order.
func MapCondition(text string) Condition {
	t := strings.ToLower(text)
	switch {
	case common.HasAny(t, "sunny", "clear"):
		return ConditionSunny
	case common.HasAny(t, "rain", "drizzle", "shower"):
		return ConditionRainy
	case common.HasAny(t, "thunder", "storm"):
		return ConditionThunderstorm
	case common.HasAny(t, "snow", "blizzard"):
		return ConditionSnow
	case common.HasAny(t, "cloud", "overcast"):
		return ConditionCloudy
	case common.HasAny(t, "partly", "partial"):
		return ConditionPartlyCloudy
	default:
		return ConditionPartlyCloudy
	}
}

// PrecipIntensity derives the 0-100 precipitation indicator from whatever
// the provider gave us: a measured amount in millimetres when present,
// otherwise a chance-of-rain percentage, otherwise an inferred value from
// the condition text. Amount and probability are deliberately treated as
// the same unit; the scoring thresholds were tuned against that value.
func PrecipIntensity(amountMM float64, chancePct int, conditionText string) int {
	if amountMM > 0 {
		v := int(amountMM * 10)
		if v > 100 {
			v = 100
		}
		return v
	}
	if chancePct > 0 {
		if chancePct > 100 {
			return 100
		}
		return chancePct
	}
	if strings.Contains(strings.ToLower(conditionText), "rain") {
		return 80
	}
	return 0
}
