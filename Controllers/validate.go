package Controllers

import (
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
)

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, trans)
}

// parseBody parses and validates a request body, responding with a 400
// and translated field messages on failure. Returns false when the
// handler should bail out.
func parseBody(ctx *fiber.Ctx, dest interface{}) bool {
	if err := ctx.BodyParser(dest); err != nil {
		_ = ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		return false
	}

	if err := validate.Struct(dest); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			_ = ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			return false
		}
		fields := make(map[string]string, len(errs))
		for _, fe := range errs {
			fields[fe.Field()] = fe.Translate(trans)
		}
		_ = ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
		return false
	}
	return true
}
