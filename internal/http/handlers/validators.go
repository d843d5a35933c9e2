package handlers

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var mobilePattern = regexp.MustCompile(`^[\+]?[1-9][\d]{0,15}$`)

var registerOnce sync.Once

// RegisterValidators adds the custom binding rules to gin's validator. Safe
// to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		_ = v.RegisterValidation("mobile", validateMobile)
		_ = v.RegisterValidation("maxbytes", validateMaxBytes)
	})
}

func validateMobile(fl validator.FieldLevel) bool {
	return mobilePattern.MatchString(fl.Field().String())
}

// maxbytes limits the UTF-8 length, where max counts runes.
func validateMaxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}

	return len(fl.Field().String()) <= limit
}
