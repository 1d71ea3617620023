package sorter

import (
	"slices"

	"pagesort/pkg/schema"
)

// Validate checks that result.Order is a permutation of names. Unknown entries are reported
// first as *InvalidFilenamesError, which also carries any missing or repeated names. Otherwise names that
// are absent or repeated are reported as *MissingFilenamesError. On success the result is
// returned with its order copied and warnings never nil.
func Validate(names []string, result schema.OrderingResult) (schema.OrderingResult, error) {
	valid := make(map[string]int, len(names))
	for _, name := range names {
		valid[name] = 0
	}

	var invalid []string
	for _, name := range result.Order {
		if _, ok := valid[name]; !ok {
			if !slices.Contains(invalid, name) {
				invalid = append(invalid, name)
			}
			continue
		}
		valid[name]++
	}

	var missing, duplicate []string
	for _, name := range names {
		switch valid[name] {
		case 0:
			missing = append(missing, name)
		case 1:
		default:
			if !slices.Contains(duplicate, name) {
				duplicate = append(duplicate, name)
			}
		}
	}

	returned := slices.Clone(result.Order)
	if returned == nil {
		returned = []string{}
	}
	if len(invalid) > 0 {
		return schema.OrderingResult{}, &InvalidFilenamesError{
			InvalidNames:   invalid,
			ValidNames:     slices.Clone(names),
			MissingNames:   missing,
			DuplicateNames: duplicate,
			ReturnedNames:  returned,
		}
	}
	if len(missing) > 0 || len(duplicate) > 0 {
		return schema.OrderingResult{}, &MissingFilenamesError{
			MissingNames:   missing,
			DuplicateNames: duplicate,
			ReturnedNames:  returned,
		}
	}

	warnings := slices.Clone(result.Warnings)
	if warnings == nil {
		warnings = []string{}
	}
	return schema.OrderingResult{
		Order:      returned,
		Confidence: result.Confidence,
		Status:     schema.StatusFor(result.Confidence),
		Reasoning:  result.Reasoning,
		Warnings:   warnings,
	}, nil
}
