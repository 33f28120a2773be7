package validator

import "testing"

type sample struct {
	Code  string  `json:"code" validate:"required,notblank"`
	Price float64 `json:"price" validate:"required"`
	Note  string  `json:"-"`
}

func TestValidateStructReportsJSONNames(t *testing.T) {
	errs := ValidateStruct(&sample{Code: "  "})
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(errs))
	}
	if errs[0].FailedField != "code" || errs[0].Tag != "notblank" {
		t.Fatalf("unexpected first error: %+v", errs[0])
	}
	if errs[1].FailedField != "price" || errs[1].Tag != "required" {
		t.Fatalf("unexpected second error: %+v", errs[1])
	}
}

func TestValidateStructOK(t *testing.T) {
	if errs := ValidateStruct(&sample{Code: "A1", Price: 1}); len(errs) != 0 {
		t.Fatalf("expected no errors, got %+v", errs)
	}
}
