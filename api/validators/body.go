package validators

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/validate"
)

const maxBodyBytes = 1 << 20

// DecodeJSONBody decodes a required JSON body into dest and runs its
// validation tags.
func DecodeJSONBody(r *http.Request, dest any) error {
	if err := decode(r, dest); err != nil {
		if errors.Is(err, io.EOF) {
			return pkgerrors.New(pkgerrors.CodeValidation, "request body is required")
		}
		return err
	}
	return validate.Struct(dest)
}

// DecodeOptionalJSONBody is DecodeJSONBody for actions whose body may be
// empty. Validation is left to the store the body is handed to.
func DecodeOptionalJSONBody(r *http.Request, dest any) error {
	if err := decode(r, dest); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decode(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	return nil
}
