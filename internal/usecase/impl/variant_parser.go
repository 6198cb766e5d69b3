package impl

import (
	"strconv"
	"strings"

	"pointshop/internal/domain/entity"
)

// ParseVariants reads the admin variant list, one "label|cost[|stock]" per
// line with ";" accepted as a separator. Lines without a label and a valid
// non-negative cost are skipped. A blank or malformed stock means unlimited.
// Positions follow the order of accepted lines.
func ParseVariants(raw string) []*entity.ProductVariant {
	var variants []*entity.ProductVariant

	normalized := strings.ReplaceAll(raw, ";", "|")
	for _, line := range strings.Split(normalized, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := splitFields(line)
		if len(parts) < 2 {
			continue
		}

		cost, err := strconv.Atoi(parts[1])
		if err != nil || cost < 0 {
			continue
		}

		var stock *int
		if len(parts) >= 3 {
			if n, err := strconv.Atoi(parts[2]); err == nil {
				stock = &n
			}
		}

		variants = append(variants, &entity.ProductVariant{
			Label:      parts[0],
			PointsCost: cost,
			Stock:      stock,
			IsActive:   true,
			Position:   len(variants),
		})
	}

	return variants
}

func splitFields(line string) []string {
	fields := strings.Split(line, "|")
	parts := fields[:0]
	for _, field := range fields {
		if field = strings.TrimSpace(field); field != "" {
			parts = append(parts, field)
		}
	}

	return parts
}

// ParseOptionalInt reads a form value where blank means nil.
func ParseOptionalInt(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}

	return &n, nil
}
