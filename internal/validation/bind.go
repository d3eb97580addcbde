package validation

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/nmesfin/mesob/internal/apperror"
)

// BindAndValidate decodes the JSON body into out and runs struct validation.
// Failures come back as ValidationError so the handler can map them to 400.
func BindAndValidate(r *http.Request, out any, v *validatorv10.Validate) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return apperror.Wrap(apperror.KindValidation, "invalid JSON payload", err)
	}

	if err := v.Struct(out); err != nil {
		return apperror.New(apperror.KindValidation, validationMessage(err))
	}

	return nil
}

func validationMessage(err error) string {
	ve, ok := err.(validatorv10.ValidationErrors)
	if !ok {
		return err.Error()
	}

	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, fmt.Sprintf("%s failed on %q", fe.StructNamespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
