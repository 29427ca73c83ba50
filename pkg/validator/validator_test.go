package validator

import (
	"testing"
)

type bankPayload struct {
	Name string `json:"name" validate:"required"`
	IFSC string `json:"ifsc_code" validate:"required,ifsc"`
}

type levelPayload struct {
	RoleID uint `json:"role_id" validate:"required"`
}

type hierarchyPayload struct {
	Level  int            `json:"level" validate:"required,min=1"`
	Levels []levelPayload `json:"levels" validate:"required,dive"`
}

type mccPayload struct {
	Code string `json:"code" validate:"required,unitcode"`
}

func TestValidateStructSuccess(t *testing.T) {
	payload := bankPayload{Name: "State Bank", IFSC: "SBIN0001234"}

	if err := ValidateStruct(payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateStructRejectsBadIFSC(t *testing.T) {
	err := ValidateStruct(bankPayload{Name: "", IFSC: "SBI-1"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	vErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(vErrs) != 2 {
		t.Fatalf("expected 2 validation errors, got %d", len(vErrs))
	}

	found := false
	for _, v := range vErrs {
		if v.Field == "ifsc_code" && v.Tag == "ifsc" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ifsc failure, got %v", vErrs)
	}
}

func TestValidateStructNestedFieldPath(t *testing.T) {
	err := ValidateStruct(hierarchyPayload{Level: 2, Levels: []levelPayload{{RoleID: 3}, {}}})
	if err == nil {
		t.Fatal("expected validation error")
	}

	vErrs := err.(ValidationErrors)
	if len(vErrs) != 1 {
		t.Fatalf("expected 1 validation error, got %d", len(vErrs))
	}
	if vErrs[0].Field != "levels[1].role_id" {
		t.Fatalf("unexpected field path %q", vErrs[0].Field)
	}
}

func TestUnitCodeRule(t *testing.T) {
	if err := ValidateStruct(mccPayload{Code: "MCC-001"}); err != nil {
		t.Fatalf("expected valid code, got %v", err)
	}
	if err := ValidateStruct(mccPayload{Code: "bad code"}); err == nil {
		t.Fatal("expected invalid code to fail")
	}
}

func TestCodeHelpers(t *testing.T) {
	if !IsIFSC(" sbin0001234 ") {
		t.Fatal("expected lower-case IFSC with spaces to be accepted")
	}
	if IsIFSC("SBIN1001234") {
		t.Fatal("expected IFSC without the fifth-position zero to be rejected")
	}
	if !IsUnitCode("MCC-001") || IsUnitCode("-MCC") || IsUnitCode("") {
		t.Fatal("unexpected unit code result")
	}
}
