package domain

import (
	"errors"
	"testing"
)

func TestNetworkError(t *testing.T) {
	baseErr := errors.New("connection refused")

	t.Run("retriable error", func(t *testing.T) {
		err := NewNetworkError("connect", baseErr)

		if !err.IsRetriable() {
			t.Error("Expected error to be retriable")
		}

		if err.Error() != "connect: connection refused" {
			t.Errorf("Error message = %q, want %q", err.Error(), "connect: connection refused")
		}

		if !errors.Is(err, baseErr) {
			t.Error("Expected error to wrap baseErr")
		}
	})

	t.Run("fatal error", func(t *testing.T) {
		err := NewFatalNetworkError("auth", baseErr)

		if err.IsRetriable() {
			t.Error("Expected error to not be retriable")
		}
	})

	t.Run("IsRetriable helper", func(t *testing.T) {
		retriable := NewNetworkError("dial", baseErr)
		fatal := NewFatalNetworkError("auth", baseErr)
		plain := errors.New("plain error")

		if !IsRetriable(retriable) {
			t.Error("IsRetriable should return true for retriable error")
		}

		if IsRetriable(fatal) {
			t.Error("IsRetriable should return false for fatal error")
		}

		if IsRetriable(plain) {
			t.Error("IsRetriable should return false for plain error")
		}
	})
}

func TestConfigError(t *testing.T) {
	baseErr := errors.New("missing value")
	err := &ConfigError{Field: "api_key", Err: baseErr}

	if err.IsRetriable() {
		t.Error("ConfigError should never be retriable")
	}

	expected := "config error [api_key]: missing value"
	if err.Error() != expected {
		t.Errorf("Error message = %q, want %q", err.Error(), expected)
	}
}

func TestUpstreamFetchError(t *testing.T) {
	t.Run("wraps cause", func(t *testing.T) {
		err := &UpstreamFetchError{Op: OpValidate, Err: ErrInvalidPrice}

		if !errors.Is(err, ErrInvalidPrice) {
			t.Error("Expected error to wrap ErrInvalidPrice")
		}

		expected := "upstream fetch failed [validate]: invalid price"
		if err.Error() != expected {
			t.Errorf("Error message = %q, want %q", err.Error(), expected)
		}
	})

	t.Run("retriable by stage", func(t *testing.T) {
		network := &UpstreamFetchError{Op: OpRequest, Err: NewNetworkError("dial", errors.New("refused"))}
		invalid := &UpstreamFetchError{Op: OpValidate, Err: ErrInvalidPrice}

		if !IsRetriable(network) {
			t.Error("request failures should be retriable")
		}
		if IsRetriable(invalid) {
			t.Error("validation failures should not be retriable")
		}
	})

	t.Run("fatal cause", func(t *testing.T) {
		err := &UpstreamFetchError{Op: OpRequest, Err: NewFatalNetworkError("build request", errors.New("bad url"))}

		if IsRetriable(err) {
			t.Error("a fatal network cause should not be retriable")
		}
		plain := &UpstreamFetchError{Op: OpStatus, Err: errors.New("unexpected status code: 502")}
		if !IsRetriable(plain) {
			t.Error("status failures without a typed cause should be retriable")
		}
	})
}

func TestInitializationError(t *testing.T) {
	cause := &UpstreamFetchError{Op: OpStatus, Err: errors.New("unexpected status code: 502")}
	err := &InitializationError{Err: cause}

	var upstream *UpstreamFetchError
	if !errors.As(err, &upstream) {
		t.Fatal("Expected InitializationError to expose the UpstreamFetchError")
	}
	if upstream.Op != OpStatus {
		t.Errorf("Op = %q, want %q", upstream.Op, OpStatus)
	}
	if !IsRetriable(err) {
		t.Error("IsRetriable should see through InitializationError")
	}
}
