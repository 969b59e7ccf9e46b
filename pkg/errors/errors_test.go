package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestGetCodeWalksChain(t *testing.T) {
	base := errors.New("429 from api")
	wrapped := fmt.Errorf("fetch page: %w", WrapWithCode(base, CodeRateLimited, "cooldown exhausted"))
	outer := WrapWithCode(wrapped, CodeAccountFetchFailed, "skip account")

	if got := GetCode(outer); got != CodeAccountFetchFailed {
		t.Errorf("GetCode = %q, want %q", got, CodeAccountFetchFailed)
	}
	if got := GetCode(wrapped); got != CodeRateLimited {
		t.Errorf("GetCode(inner) = %q, want %q", got, CodeRateLimited)
	}
	if !HasCode(outer, CodeRateLimited) {
		t.Error("HasCode did not find nested rate_limited code")
	}
	if HasCode(outer, CodeDispatchFailed) {
		t.Error("HasCode reported a code that is not in the chain")
	}
	if !errors.Is(outer, base) {
		t.Error("errors.Is should reach the base error")
	}
}

func TestWrapWithCodeNil(t *testing.T) {
	if WrapWithCode(nil, CodeMarkFailed, "x") != nil {
		t.Error("WrapWithCode(nil) should be nil")
	}
}

func TestErrorMessage(t *testing.T) {
	err := WrapWithCode(errors.New("smtp 503"), CodeDispatchFailed, "send digest")
	if got := err.Error(); got != "send digest: smtp 503" {
		t.Errorf("Error() = %q", got)
	}
	if GetCode(errors.New("plain")) != "" {
		t.Error("GetCode of a plain error should be empty")
	}
}
