package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodesSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("wallet", "u1"))

	se := GetServiceError(err)
	if se == nil {
		t.Fatal("service error lost through wrapping")
	}
	if se.Code != CodeNotFound || se.Status != http.StatusNotFound {
		t.Fatalf("unexpected %v / %d", se.Code, se.Status)
	}
	if !IsNotFound(err) {
		t.Fatal("IsNotFound failed through wrapping")
	}
	if IsTimeout(err) {
		t.Fatal("wrong code matched")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	a := InsufficientFunds(10, 100)
	b := InsufficientFunds(5, 7)
	if !stderrors.Is(a, b) {
		t.Fatal("same code should match")
	}
	if stderrors.Is(a, InvalidArgument("x")) {
		t.Fatal("different codes should not match")
	}
}

func TestWithDetails(t *testing.T) {
	err := Timeout("transfer", nil).WithDetails("attempts", 8)
	if err.Details["attempts"] != 8 {
		t.Fatalf("details %v", err.Details)
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := StoreUnavailable("get", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("cause lost")
	}
}
