package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "product not found",
			},
			want: "product not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeTransport,
				Message: "list products",
				Cause:   errors.New("connection refused"),
			},
			want: "list products: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{
		Code:    ErrCodeInternal,
		Message: "wrapped error",
		Cause:   cause,
	}

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestNotFound(t *testing.T) {
	err := NotFoundf("%s %s not found", "staff", "s-1")
	if err.Code != ErrCodeNotFound {
		t.Errorf("NotFoundf().Code = %v, want %v", err.Code, ErrCodeNotFound)
	}
	if err.Message != "staff s-1 not found" {
		t.Errorf("NotFoundf().Message = %v", err.Message)
	}
	if err.Status != http.StatusNotFound {
		t.Errorf("NotFoundf().Status = %d, want 404", err.Status)
	}
}

func TestTransport(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Transport("delete order", cause)
	if err.Code != ErrCodeTransport {
		t.Errorf("Transport().Code = %v, want %v", err.Code, ErrCodeTransport)
	}
	if !errors.Is(err, cause) {
		t.Error("Transport() should wrap its cause")
	}
	if StatusCode(err) != 0 {
		t.Errorf("StatusCode() = %d, want 0 for network failures", StatusCode(err))
	}

	statusErr := TransportStatus(http.StatusBadGateway, "unexpected status")
	if StatusCode(statusErr) != http.StatusBadGateway {
		t.Errorf("StatusCode() = %d, want 502", StatusCode(statusErr))
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("email", "invalid email format")
	if err.Code != ErrCodeValidation {
		t.Errorf("ValidationField().Code = %v, want %v", err.Code, ErrCodeValidation)
	}
	if err.Field != "email" {
		t.Errorf("ValidationField().Field = %v, want %v", err.Field, "email")
	}
	if GetField(err) != "email" {
		t.Errorf("GetField() = %v, want email", GetField(err))
	}
}

func TestWrap_Nil(t *testing.T) {
	if Wrap(nil, ErrCodeInternal, "noop") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestFromContext(t *testing.T) {
	if got := FromContext(context.Canceled, "list"); !IsCanceled(got) {
		t.Errorf("FromContext(Canceled) = %v, want canceled code", got)
	}
	wrapped := fmt.Errorf("do: %w", context.DeadlineExceeded)
	if got := FromContext(wrapped, "list"); !IsTimeout(got) {
		t.Errorf("FromContext(DeadlineExceeded) = %v, want timeout code", got)
	}
	if got := FromContext(errors.New("boom"), "list"); got != nil {
		t.Errorf("FromContext(other) = %v, want nil", got)
	}
}

func TestPredicates_ThroughWrapping(t *testing.T) {
	base := NotFound("category missing")
	wrapped := fmt.Errorf("delete category: %w", base)

	tests := []struct {
		name string
		fn   func(error) bool
		err  error
		want bool
	}{
		{"not found wrapped", IsNotFound, wrapped, true},
		{"transport on not found", IsTransport, wrapped, false},
		{"transport", IsTransport, TransportStatus(500, "boom"), true},
		{"validation", IsValidation, Validation("bad"), true},
		{"internal", IsInternal, Internalf("bad %d", 1), true},
		{"plain error", IsNotFound, errors.New("plain"), false},
		{"nil", IsTransport, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.err); got != tt.want {
				t.Errorf("predicate(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	if GetCode(wrapped) != ErrCodeNotFound {
		t.Errorf("GetCode() = %v, want %v", GetCode(wrapped), ErrCodeNotFound)
	}
	if GetCode(errors.New("plain")) != "" {
		t.Error("GetCode() of a plain error should be empty")
	}
}
