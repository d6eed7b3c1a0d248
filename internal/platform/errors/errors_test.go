package errors

import (
	stderrs "errors"
	"net/http"
	"testing"
)

func TestCodeOf_AndIsCode(t *testing.T) {
	t.Parallel()

	err := NotFoundf("se %s", "asmith")
	if CodeOf(err) != ErrorCodeNotFound {
		t.Fatalf("CodeOf got %v", CodeOf(err))
	}
	if !IsCode(err, ErrorCodeNotFound) {
		t.Fatalf("IsCode false")
	}
	if IsCode(err, ErrorCodeValidation) {
		t.Fatalf("IsCode matched wrong code")
	}
	if CodeOf(stderrs.New("plain")) != ErrorCodeUnknown {
		t.Fatalf("plain error should map to unknown")
	}
	if CodeOf(nil) != ErrorCodeUnknown {
		t.Fatalf("nil should map to unknown")
	}
}

func TestWrap_PreservesCauseAndCode(t *testing.T) {
	t.Parallel()

	cause := stderrs.New("socket closed")
	err := Wrapf(cause, ErrorCodeUnavailable, "store %s down", "pg")

	if !stderrs.Is(err, cause) {
		t.Fatalf("wrapped cause lost")
	}
	if CodeOf(err) != ErrorCodeUnavailable {
		t.Fatalf("code lost through wrap")
	}
	if Root(err) != cause {
		t.Fatalf("Root should find the deepest cause")
	}
}

func TestCodeOf_UnwrapsThroughForeignWrapping(t *testing.T) {
	t.Parallel()

	inner := Validationf("bad roster row")
	outer := stderrs.Join(stderrs.New("context"), inner)
	if CodeOf(outer) != ErrorCodeValidation {
		t.Fatalf("CodeOf should see through joined errors, got %v", CodeOf(outer))
	}
}

func TestHTTPStatus_Mapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{NotFoundf("x"), http.StatusNotFound},
		{InvalidArgf("x"), http.StatusUnprocessableEntity},
		{Validationf("x"), http.StatusBadRequest},
		{DuplicateKeyf("x"), http.StatusConflict},
		{Conflictf("x"), http.StatusConflict},
		{Unavailablef("x"), http.StatusServiceUnavailable},
		{DBf("x"), http.StatusInternalServerError},
		{Infeasiblef("x"), http.StatusInternalServerError},
		{InfeasiblePersistf("x"), http.StatusInternalServerError},
		{Internalf("x"), http.StatusInternalServerError},
		{stderrs.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestWithFieldAndOp_CopyOnWrite(t *testing.T) {
	t.Parallel()

	base := Validationf("missing alias")
	withField := WithField(base, "alias")
	withOp := WithOp(withField, "roster.intake")

	be, _ := As(base)
	fe, _ := As(withField)
	oe, _ := As(withOp)

	if be.Field() != "" {
		t.Fatalf("base mutated: field %q", be.Field())
	}
	if fe.Field() != "alias" {
		t.Fatalf("field not attached: %q", fe.Field())
	}
	if oe.Op() != "roster.intake" || oe.Field() != "alias" {
		t.Fatalf("op copy lost data: op=%q field=%q", oe.Op(), oe.Field())
	}

	// non-*Error passthrough
	plain := stderrs.New("plain")
	if WithField(plain, "x") != plain {
		t.Fatalf("WithField should return foreign errors unchanged")
	}
}

func TestWrapIf(t *testing.T) {
	t.Parallel()

	if WrapIf(nil, ErrorCodeDB, "x") != nil {
		t.Fatalf("WrapIf(nil) should be nil")
	}
	err := WrapIf(stderrs.New("y"), ErrorCodeDB, "x")
	if CodeOf(err) != ErrorCodeDB {
		t.Fatalf("WrapIf code lost")
	}
}

func TestErrNotFound_Sentinel(t *testing.T) {
	t.Parallel()

	if !IsCode(ErrNotFound, ErrorCodeNotFound) {
		t.Fatalf("sentinel code wrong")
	}
	wrapped := Wrap(ErrNotFound, ErrorCodeDB, "lookup failed")
	if !stderrs.Is(wrapped, ErrNotFound) {
		t.Fatalf("sentinel lost through wrap")
	}
}
