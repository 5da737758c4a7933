package analysis

import (
	"regexp"
	"strings"

	"estatewise/server/internal/models"
)

var (
	whitespace     = regexp.MustCompile(`\s+`)
	addressPattern = regexp.MustCompile(`^([^,]+),\s*([^,]+),\s*([A-Za-z]{2})\s+(\d{5}(?:-\d{4})?)$`)
)

// ParseAddress splits a one-line US address of the form
// "street, city, ST 12345" into its parts.
func ParseAddress(raw string) (models.Address, error) {
	cleaned := strings.TrimSpace(whitespace.ReplaceAllString(raw, " "))
	if cleaned == "" {
		return models.Address{}, models.ValidationError("address is empty")
	}

	m := addressPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return models.Address{}, models.ValidationError("address %q is not in the form \"street, city, ST 12345\"", cleaned)
	}

	address := models.Address{
		Street: strings.TrimSpace(m[1]),
		City:   strings.TrimSpace(m[2]),
		State:  strings.ToUpper(m[3]),
		Zip:    m[4],
	}
	if address.Street == "" || address.City == "" {
		return models.Address{}, models.ValidationError("address %q is missing a street or city", cleaned)
	}
	return address, nil
}
