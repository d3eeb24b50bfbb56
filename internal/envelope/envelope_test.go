package envelope

import (
	"errors"
	"testing"
)

func TestSuccess(t *testing.T) {
	e := Success(42)
	if e.Status != StatusSuccess {
		t.Errorf("Status = %v, want %v", e.Status, StatusSuccess)
	}
	if e.Data != 42 {
		t.Errorf("Data = %v, want 42", e.Data)
	}
	if e.Error != "" {
		t.Errorf("Error = %q, want empty", e.Error)
	}
}

func TestFail(t *testing.T) {
	e := Fail[string](errors.New("boom"), ProviderCode("SOME_CODE"))
	if e.Status != StatusError {
		t.Errorf("Status = %v, want %v", e.Status, StatusError)
	}
	if e.Error != "boom" {
		t.Errorf("Error = %q, want %q", e.Error, "boom")
	}
	if e.ProviderCode != "SOME_CODE" {
		t.Errorf("ProviderCode = %v, want SOME_CODE", e.ProviderCode)
	}
	if e.Data != "" {
		t.Errorf("Data = %q, want zero value", e.Data)
	}
}

func TestFail_nilError(t *testing.T) {
	e := Fail[int](nil, "")
	if e.Error != "" {
		t.Errorf("Error = %q, want empty for nil err", e.Error)
	}
}

func TestIsInternalError(t *testing.T) {
	RegisterInternalError("TEST_INTERNAL")
	tests := []struct {
		name string
		code ProviderCode
		want bool
	}{
		{"registered code", "TEST_INTERNAL", true},
		{"unregistered code", "TEST_OTHER", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.IsInternalError(); got != tt.want {
				t.Errorf("IsInternalError() = %v, want %v", got, tt.want)
			}
		})
	}
}
