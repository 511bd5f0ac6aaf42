package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldError identifies one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var validationMessages = map[string]string{
	"required": "campo obrigatório",
	"email":    "e-mail inválido",
	"datetime": "formato de data ou hora inválido",
	"min":      "valor muito curto",
	"max":      "valor muito longo",
	"oneof":    "valor fora das opções permitidas",
	"uuid":     "identificador inválido",
}

// RegisterValidation makes validation errors report JSON field names instead
// of Go struct field names. Call once at startup.
func RegisterValidation() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}

// NewBindingErrorResponse renders a request binding failure. Validation
// errors become per-field messages; anything else keeps the raw error text.
func NewBindingErrorResponse(err error) *Response {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewErrorResponse(err.Error())
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		msg := validationMessages[e.Tag()]
		if msg == "" {
			msg = e.Error()
		}
		fields = append(fields, FieldError{Field: e.Field(), Message: msg})
	}

	resp := NewErrorResponse("dados inválidos")
	resp.Data = fields
	return resp
}
