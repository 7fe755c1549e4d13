package providers

import (
	"errors"
	"strings"

	"github.com/gookit/validate"

	"repx/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (v *CnfValidator) Validate() error {
	val := validate.Struct(v.conf)
	if !val.Validate() {
		return errors.New(val.Errors.One())
	}
	return nil
}

func init() {
	validate.AddValidator("unixPath", func(val interface{}) bool {
		s, ok := val.(string)
		if !ok || s == "" {
			return false
		}
		return !strings.ContainsAny(s, "\\\x00")
	})
}
