// Package phone normalizes free-form phone numbers into channel addresses.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when a Normalizer is built without a region.
const DefaultRegion = "AU"

// Normalizer turns free-form phone numbers into E.164 digits.
// It is safe for concurrent use.
type Normalizer struct {
	region string
}

// NewNormalizer creates a normalizer parsing local numbers against region,
// an ISO 3166-1 alpha-2 code.
func NewNormalizer(region string) *Normalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}
	return &Normalizer{region: region}
}

// Region returns the default region.
func (n *Normalizer) Region() string {
	return n.region
}

// Normalize returns raw as international digits without a leading plus.
// Numbers that fail to parse or validate come back trimmed but otherwise
// unchanged.
func (n *Normalizer) Normalize(raw string) string {
	return Normalize(raw, n.region)
}

// Normalize is the free-function form of Normalizer.Normalize.
func Normalize(raw, region string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	num, err := phonenumbers.Parse(trimmed, strings.ToUpper(region))
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return trimmed
	}
	return strings.TrimPrefix(phonenumbers.Format(num, phonenumbers.E164), "+")
}

// Mask hides all but the last four digits of an address.
func Mask(addr string) string {
	const showLast = 4

	digits := 0
	for _, ch := range addr {
		if ch >= '0' && ch <= '9' {
			digits++
		}
	}

	var b strings.Builder
	seen := 0
	for _, ch := range addr {
		if ch >= '0' && ch <= '9' {
			if seen < digits-showLast {
				b.WriteByte('*')
			} else {
				b.WriteRune(ch)
			}
			seen++
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
