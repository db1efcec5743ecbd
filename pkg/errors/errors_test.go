package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapKeepsCauseChain(t *testing.T) {
	cause := stdErrors.New("connection reset")
	err := Wrap(CodeUpstream, cause, "fetch payment")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be discoverable via errors.Is")
	}
	if err.Code() != CodeUpstream {
		t.Fatalf("expected upstream code, got %s", err.Code())
	}
	if err.Error() != "UPSTREAM_ERROR: fetch payment" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}

func TestAsFindsTypedErrorThroughWrapping(t *testing.T) {
	inner := New(CodeEligibility, "only captured payments can be refunded")
	outer := fmt.Errorf("refund request: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error through fmt wrapping")
	}
	if typed.Code() != CodeEligibility {
		t.Fatalf("expected eligibility code, got %s", typed.Code())
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("NO_SUCH_CODE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestSecurityMetadataNeverAllowsDetails(t *testing.T) {
	meta := MetadataFor(CodeSecurity)
	if meta.DetailsAllowed {
		t.Fatal("security errors must not leak expected-signature details")
	}
	if meta.Retryable {
		t.Fatal("security errors are terminal")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodePersistence, stdErrors.New("duplicate key value"), "create payment")
	d := Dump(err)
	if d.Code != CodePersistence {
		t.Fatalf("expected persistence code, got %s", d.Code)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected full chain, got %v", d.Chain)
	}
	if !d.Retryable {
		t.Fatal("persistence failures are marked retryable")
	}
}
