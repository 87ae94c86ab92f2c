package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"go-shop/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var errMalformedBody = errors.New("malformed request body")

var registerNames sync.Once

// useWireNames makes validator report fields by their json/form name.
func useWireNames() {
	registerNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
}

// bind decodes the request body (JSON, form or multipart, by content type)
// into obj and maps failures onto the error taxonomy.
func bind(c *gin.Context, obj any) error {
	if err := c.ShouldBind(obj); err != nil {
		return bindError(err)
	}
	return nil
}

func bindError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	out := apperr.NewValidation()
	for _, fe := range ve {
		out.Add(fe.Field(), fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	name := strings.ReplaceAll(fe.Field(), "_", " ")
	numeric := isNumeric(fe.Kind())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", name)
	case "min", "gte":
		if numeric {
			return fmt.Sprintf("The %s must be at least %s.", name, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s characters.", name, fe.Param())
	case "max", "lte":
		if numeric {
			return fmt.Sprintf("The %s must not be greater than %s.", name, fe.Param())
		}
		return fmt.Sprintf("The %s must not be greater than %s characters.", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", name)
	case "eqfield":
		return fmt.Sprintf("The %s does not match.", name)
	case "url":
		return fmt.Sprintf("The %s must be a valid URL.", name)
	}
	return fmt.Sprintf("The %s is invalid.", name)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
