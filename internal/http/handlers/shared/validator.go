package shared

import (
	"errors"
	"sync"

	"github.com/eleven-freight/internal/constants"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators 注册自定义绑定校验
func RegisterValidators() {
	registerOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("receipt_type", func(fl validator.FieldLevel) bool {
			return constants.IsValidReceiptType(fl.Field().String())
		})
	})
}

// FailedOnTag 判断绑定错误是否由指定校验规则触发
func FailedOnTag(err error, tag string) bool {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return false
	}
	for _, fieldErr := range validationErrs {
		if fieldErr.Tag() == tag {
			return true
		}
	}
	return false
}
