package sorter

import (
	"errors"
	"slices"
	"testing"

	"pagesort/pkg/schema"
)

var pages = []string{"a1x.webp", "q9z.webp", "m3k.webp"}

func TestValidateAcceptsPermutation(t *testing.T) {
	in := schema.OrderingResult{
		Order:      []string{"q9z.webp", "a1x.webp", "m3k.webp"},
		Confidence: 0.95,
		Reasoning:  "opening first",
	}
	got, err := Validate(pages, in)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	sorted := slices.Sorted(slices.Values(got.Order))
	if !slices.Equal(sorted, slices.Sorted(slices.Values(pages))) {
		t.Errorf("Order %v is not a permutation of %v", got.Order, pages)
	}
	if got.Status != schema.StatusCoherent || got.Warnings == nil {
		t.Errorf("Validate() = %+v", got)
	}

	again, err := Validate(pages, got)
	if err != nil {
		t.Fatalf("revalidation error = %v", err)
	}
	if !slices.Equal(again.Order, got.Order) || again.Confidence != got.Confidence || again.Status != got.Status {
		t.Errorf("revalidation changed result: %+v != %+v", again, got)
	}

	got.Order[0] = "changed"
	if in.Order[0] != "q9z.webp" {
		t.Error("Validate() aliases the input order")
	}
}

func TestValidateBanding(t *testing.T) {
	tests := map[float64]schema.Status{
		0.95: schema.StatusCoherent,
		0.85: schema.StatusCoherent,
		0.80: schema.StatusNeedsReordering,
		0.70: schema.StatusNeedsReordering,
		0.40: schema.StatusContextFailure,
	}
	for confidence, want := range tests {
		got, err := Validate(pages, schema.OrderingResult{Order: pages, Confidence: confidence, Status: schema.StatusCoherent})
		if err != nil {
			t.Fatalf("Validate(%v) error = %v", confidence, err)
		}
		if got.Status != want {
			t.Errorf("Validate(%v).Status = %q, want %q", confidence, got.Status, want)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name        string
		order       []string
		invalid     []string
		missing     []string
		duplicate   []string
		wantInvalid bool
	}{
		{
			name:        "foreign name",
			order:       []string{"q9z.webp", "a1x.webp", "m3k.webp", "x.webp"},
			invalid:     []string{"x.webp"},
			wantInvalid: true,
		},
		{
			name:        "foreign and missing",
			order:       []string{"q9z.webp", "a1x.webp", "bogus.webp"},
			invalid:     []string{"bogus.webp"},
			missing:     []string{"m3k.webp"},
			wantInvalid: true,
		},
		{
			name:        "foreign and duplicate",
			order:       []string{"q9z.webp", "q9z.webp", "bogus.webp"},
			invalid:     []string{"bogus.webp"},
			missing:     []string{"a1x.webp", "m3k.webp"},
			duplicate:   []string{"q9z.webp"},
			wantInvalid: true,
		},
		{
			name:        "case variant",
			order:       []string{"Q9Z.webp", "a1x.webp", "m3k.webp"},
			invalid:     []string{"Q9Z.webp"},
			missing:     []string{"q9z.webp"},
			wantInvalid: true,
		},
		{
			name:    "omitted name",
			order:   []string{"q9z.webp", "m3k.webp"},
			missing: []string{"a1x.webp"},
		},
		{
			name:      "duplicated name",
			order:     []string{"q9z.webp", "a1x.webp", "a1x.webp", "m3k.webp"},
			duplicate: []string{"a1x.webp"},
		},
		{
			name:      "duplicate hides omission",
			order:     []string{"q9z.webp", "q9z.webp", "m3k.webp"},
			missing:   []string{"a1x.webp"},
			duplicate: []string{"q9z.webp"},
		},
		{
			name:    "empty order",
			order:   []string{},
			missing: pages,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(pages, schema.OrderingResult{Order: tt.order, Confidence: 0.99})
			if tt.wantInvalid {
				var invalid *InvalidFilenamesError
				if !errors.As(err, &invalid) {
					t.Fatalf("Validate() error = %v, want *InvalidFilenamesError", err)
				}
				if !slices.Equal(invalid.InvalidNames, tt.invalid) || !slices.Equal(invalid.MissingNames, tt.missing) {
					t.Errorf("invalid = %v missing = %v", invalid.InvalidNames, invalid.MissingNames)
				}
				if !slices.Equal(invalid.DuplicateNames, tt.duplicate) || !slices.Equal(invalid.Payload().DuplicateNames, tt.duplicate) {
					t.Errorf("duplicate = %v", invalid.DuplicateNames)
				}
				if !slices.Equal(invalid.ReturnedNames, tt.order) {
					t.Errorf("returned = %v", invalid.ReturnedNames)
				}
				return
			}
			var missing *MissingFilenamesError
			if !errors.As(err, &missing) {
				t.Fatalf("Validate() error = %v, want *MissingFilenamesError", err)
			}
			if !slices.Equal(missing.MissingNames, tt.missing) || !slices.Equal(missing.DuplicateNames, tt.duplicate) {
				t.Errorf("missing = %v duplicate = %v", missing.MissingNames, missing.DuplicateNames)
			}
			if p := missing.Payload(); p.Status != schema.StatusContextFailure || !slices.Equal(p.ReturnedNames, tt.order) {
				t.Errorf("Payload() = %+v", p)
			}
		})
	}
}
