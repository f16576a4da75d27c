package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

type loginBody struct {
	Email string `json:"email" validate:"required,email"`
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope"}`))
	var body loginBody
	err := DecodeJSONBody(req, &body)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyRejectsUnknownAndEmpty(t *testing.T) {
	var body loginBody
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","extra":1}`))
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected unknown field rejection, got %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected empty body rejection, got %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := DecodeOptionalJSONBody(req, &body); err != nil {
		t.Fatalf("optional body should accept empty input: %v", err)
	}
}

func TestParseQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&min=10.5&bad=x&q=%20shirt%20", nil)

	page, err := ParseQueryInt(req, "page", 1, 1, 100)
	if err != nil || page != 3 {
		t.Fatalf("unexpected page %d err %v", page, err)
	}
	if _, err := ParseQueryInt(req, "bad", 1, 1, 100); err == nil {
		t.Fatalf("expected numeric error")
	}
	min, err := ParseQueryDecimal(req, "min")
	if err != nil || min == nil || min.String() != "10.5" {
		t.Fatalf("unexpected min %v err %v", min, err)
	}
	if v, err := ParseQueryDecimal(req, "max"); err != nil || v != nil {
		t.Fatalf("expected unset max")
	}
	if got := QueryString(req, "q", 3); got != "shi" {
		t.Fatalf("unexpected query string %q", got)
	}
}
