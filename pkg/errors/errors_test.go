package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "campsite cs-1 not found",
			},
			expected: "NOT_FOUND: campsite cs-1 not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeResolutionUnavailable,
				Message: "availability store unreachable",
				Err:     errors.New("connection refused"),
			},
			expected: "RESOLUTION_UNAVAILABLE: availability store unreachable (caused by: connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("gateway declined")
	appErr := SubmissionFailed("payment failed", originalErr)

	if !errors.Is(appErr, originalErr) {
		t.Errorf("errors.Is should find the wrapped cause")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Booking"), CodeNotFound, http.StatusNotFound},
		{"resource not found", ResourceNotFound("campsite", "cs-9"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad dates", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid quantity", InvalidQuantity(0), CodeInvalidQuantity, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad json"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("missing token"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("providers only"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("dates taken"), CodeConflict, http.StatusConflict},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("Weather"), CodeUnavailable, http.StatusServiceUnavailable},
		{"resolution unavailable", ResolutionUnavailable("store down", nil), CodeResolutionUnavailable, http.StatusServiceUnavailable},
		{"submission failed", SubmissionFailed("declined", nil), CodeSubmissionFailed, http.StatusBadGateway},
		{"rate limited", RateLimited("slow down"), CodeRateLimited, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestResourceNotFound_Details(t *testing.T) {
	err := ResourceNotFound("rental_item", "ri-4")

	if err.Details["kind"] != "rental_item" || err.Details["id"] != "ri-4" {
		t.Errorf("unexpected details: %v", err.Details)
	}
	if err.Message != "rental_item ri-4 not found" {
		t.Errorf("unexpected message: %s", err.Message)
	}
}

func TestStatusCode_DefaultsToInternal(t *testing.T) {
	err := &AppError{Code: "CUSTOM"}
	if err.StatusCode() != http.StatusInternalServerError {
		t.Errorf("StatusCode() = %d, want 500", err.StatusCode())
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Conflict("busy")
	wrapped := fmt.Errorf("submit: %w", appErr)
	regularErr := errors.New("regular error")

	if got := AsAppError(wrapped); got != appErr {
		t.Errorf("AsAppError() should unwrap to the original AppError")
	}

	result := AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Errorf("AsAppError() should wrap the original error")
	}
}

func TestIsAppErrorAndHasCode(t *testing.T) {
	wrapped := fmt.Errorf("resolve: %w", ResolutionUnavailable("timeout", nil))

	if !IsAppError(wrapped) {
		t.Errorf("IsAppError() should see through wrapping")
	}
	if !HasCode(wrapped, CodeResolutionUnavailable) {
		t.Errorf("HasCode() should match RESOLUTION_UNAVAILABLE")
	}
	if HasCode(wrapped, CodeConflict) {
		t.Errorf("HasCode() should not match CONFLICT")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Errorf("HasCode() should be false for plain errors")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	body := string(InvalidQuantity(-2).ToJSON())

	if !strings.Contains(body, `"code":"INVALID_QUANTITY"`) {
		t.Errorf("ToJSON() should contain error code, got %s", body)
	}
	if !strings.Contains(body, `"quantity":-2`) {
		t.Errorf("ToJSON() should contain details, got %s", body)
	}
}
