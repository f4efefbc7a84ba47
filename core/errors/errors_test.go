package errors

import (
	"errors"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFound("session", "abc-123")
	if got, want := err.Error(), "session not found: abc-123"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError does not unwrap to ErrNotFound")
	}

	noID := NewNotFound("session", "")
	if got, want := noID.Error(), "session not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidation("document", "must not be empty")
	if got, want := err.Error(), "validation failed for document: must not be empty"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError does not unwrap to ErrInvalidInput")
	}
}

func TestParseError(t *testing.T) {
	err := NewParse("pastelog", "events.pastelog", "bad timestamp")
	if got, want := err.Error(), "failed to parse pastelog at events.pastelog: bad timestamp"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ParseError does not unwrap to ErrInvalidInput")
	}
}

func TestIOError(t *testing.T) {
	inner := errors.New("disk full")
	err := NewIO("write", "/tmp/x", inner)
	if !errors.Is(err, inner) {
		t.Error("IOError does not unwrap to the underlying error")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) != nil")
	}
	inner := errors.New("boom")
	wrapped := Wrap(inner, "while reconciling")
	if !errors.Is(wrapped, inner) {
		t.Error("Wrap broke the error chain")
	}
	if got, want := wrapped.Error(), "while reconciling: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWrapf(t *testing.T) {
	if Wrapf(nil, "ctx %d", 1) != nil {
		t.Error("Wrapf(nil) != nil")
	}
	inner := errors.New("boom")
	wrapped := Wrapf(inner, "session %s", "abc")
	if got, want := wrapped.Error(), "session abc: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestAs(t *testing.T) {
	err := Wrap(NewValidation("field", "msg"), "outer")
	var verr *ValidationError
	if !As(err, &verr) {
		t.Fatal("As failed to find ValidationError")
	}
	if verr.Field != "field" {
		t.Errorf("Field = %q, want %q", verr.Field, "field")
	}
}
