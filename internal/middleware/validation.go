package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/crm-api/internal/model"
)

// RegisterValidators installs custom validators on gin's binding engine
// and reports field names by their json tag in validation errors.
func RegisterValidators() {
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

	v.RegisterValidation("dealstage", func(fl validator.FieldLevel) bool {
		switch model.DealStage(fl.Field().String()) {
		case model.DealStageProspecting, model.DealStageQualified, model.DealStageProposal,
			model.DealStageNegotiation, model.DealStageWon, model.DealStageLost:
			return true
		}
		return false
	})

	v.RegisterValidation("noticetype", func(fl validator.FieldLevel) bool {
		if fl.Field().String() == "" {
			return true
		}
		t := model.NoticeType(fl.Field().String())
		for _, known := range model.AllNoticeTypes {
			if t == known {
				return true
			}
		}
		return false
	})
}
