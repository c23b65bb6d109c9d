package call

import (
	"encoding/json"
	"strings"

	"github.com/teslashibe/restaurantia/pkg/booking"
)

// DefaultPhone is recorded when the caller's number is unknown.
const DefaultPhone = "Unknown"

// Metadata is the key/value bag attached to a call when it starts.
type Metadata struct {
	CustomerName  string           `json:"customerName,omitempty"`
	CustomerPhone string           `json:"customerPhone,omitempty"`
	Language      booking.Language `json:"language,omitempty"`
}

// Normalize fills defaults and canonicalizes the language tag.
func (m Metadata) Normalize() Metadata {
	m.CustomerName = strings.TrimSpace(m.CustomerName)
	m.CustomerPhone = strings.TrimSpace(m.CustomerPhone)
	if m.CustomerPhone == "" {
		m.CustomerPhone = DefaultPhone
	}
	m.Language = booking.ParseLanguage(string(m.Language))
	return m
}

// ParseMetadata decodes raw JSON metadata. Empty or malformed input
// yields the defaults: no name, phone "Unknown", English.
func ParseMetadata(raw string) Metadata {
	var m Metadata
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			m = Metadata{}
		}
	}
	return m.Normalize()
}
