// Package validation turns untrusted admin and tracking input into typed,
// normalized values. Every field rule lives here.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error carries every violated rule. Error() reports the first one.
type Error struct {
	Details []FieldError
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return "dados inválidos"
	}
	return e.Details[0].Message
}

func single(path, message string) *Error {
	return &Error{Details: []FieldError{{Path: path, Message: message}}}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Paths in error details use the JSON field names the admin UI sends.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	setupCustomValidations(v)

	v.RegisterStructValidation(productStructLevel, ProductInput{})
	v.RegisterStructValidation(whatsAppStructLevel, WhatsAppPageInput{})
	v.RegisterStructValidation(socialProofItemStructLevel, SocialProofItemInput{})
	return v
}

// Input is implemented by every schema in this package.
type Input interface {
	normalize()
}

// Check validates an already decoded input and normalizes it in place
// (event lists deduplicated, blank optionals cleared).
func Check(in Input) error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return translate(verrs)
		}
		return err
	}
	in.normalize()
	return nil
}

func parse(raw []byte, dst Input) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return decodeError(err)
	}
	return Check(dst)
}

func decodeError(err error) *Error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return single(typeErr.Field, fmt.Sprintf("Tipo inválido: esperado %s", typeErr.Type.Kind()))
	}
	return single("", "JSON inválido")
}

func translate(verrs validator.ValidationErrors) *Error {
	out := &Error{Details: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Details = append(out.Details, FieldError{
			Path:    fieldPath(fe),
			Message: getValidationErrorMessage(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name: "PixelInput.defaultEvents[1]"
// becomes "defaultEvents[1]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// Messages tied to one field. Keyed by "<json field>.<tag>".
var fieldMessages = map[string]string{
	"label.required":                       "Informe um nome para o pixel",
	"pixelId.required":                     "Informe o Pixel ID",
	"pixelId.pixel_id":                     "Pixel ID deve conter apenas números (10-20 dígitos)",
	"title.required":                       "Informe um título",
	"affiliateUrl.required":                "Informe a URL do afiliado",
	"affiliateUrl.affiliate_url":           "URL deve ser https e pertencer a shopee/aliexpress/mercadolivre/amazon",
	"pixelConfigId.active_pixel":           "Links ativos precisam de um pixel selecionado",
	"events.min":                           "Selecione pelo menos um evento",
	"headline.required":                    "Informe o título da página",
	"buttonText.required":                  "Informe o texto do botão",
	"whatsappUrl.required":                 "Informe o link do grupo",
	"whatsappUrl.whatsapp_url":             "URL deve ser https e apontar para chat.whatsapp.com ou wa.me",
	"redirectEvent.required":               "Selecione o evento de redirecionamento",
	"redirectDelay.min":                    "Tempo mínimo de 1 segundo",
	"redirectDelay.max":                    "Tempo máximo de 30 segundos",
	"benefitCards.max":                     "Máximo de 8 cards de benefício",
	"emoji.required":                       "Informe um emoji",
	"socialProofInterval.min":              "Intervalo mínimo de 5 segundos",
	"socialProofInterval.max":              "Intervalo máximo de 60 segundos",
	"vacancyDecrementInterval.min":         "Intervalo mínimo de 1 segundo",
	"vacancyDecrementInterval.max":         "Intervalo máximo de 60 segundos",
	"vacancyCounterEnabled.exclusive_mode": "Contador de vagas e redirecionamento automático não podem estar ativos ao mesmo tempo",
	"redirectMode.mode_conflict":           "Modo de redirecionamento conflita com os campos redirectEnabled/vacancyCounterEnabled",
	"socialProofCarouselItems.max":         "Máximo de 10 itens no carrossel",
	"description.text_item":                "Depoimentos de texto precisam de descrição",
	"author.text_item":                     "Depoimentos de texto precisam de autor",
	"imageUrl.image_item":                  "Depoimentos de imagem precisam de uma URL https",
	"carouselInterval.min":                 "Intervalo mínimo de 3 segundos",
	"carouselInterval.max":                 "Intervalo máximo de 30 segundos",
	"groupImageUrl.image_url":              "URL deve ser HTTPS e apontar para uma imagem válida (.jpg, .png, .gif, .webp)",
	"groupImageUrl.max":                    "URL deve ter no máximo 2048 caracteres",
	"participantCount.min":                 "Quantidade deve ser maior ou igual a 0",
	"participantCount.max":                 "Quantidade deve ser menor que 1.000.000",
	"redirectText.required":                "Informe o texto de redirecionamento",
	"pageId.required":                      "Informe a página",
	"eventId.required":                     "Informe o ID do evento",
}

func getValidationErrorMessage(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}

	switch fe.Tag() {
	case "required":
		return fe.Field() + " é obrigatório"
	case "min":
		return boundMessage(fe, "mínimo")
	case "max":
		return boundMessage(fe, "máximo")
	case "oneof":
		return fe.Field() + " deve ser um de: " + fe.Param()
	case "uuid":
		return fe.Field() + " deve ser um UUID válido"
	case "meta_event":
		return "Evento inválido: " + fmt.Sprint(fe.Value())
	case "font_size":
		return fe.Field() + " deve ser small, medium ou large"
	case "redirect_mode":
		return fe.Field() + " deve ser auto_redirect, vacancy_counter ou manual_only"
	case "color":
		return fe.Field() + " deve ser uma cor hexadecimal (#RRGGBB)"
	case "https_url":
		return "URL deve começar com https://"
	case "image_url":
		return "URL deve ser HTTPS e apontar para uma imagem válida (.jpg, .png, .gif, .webp)"
	default:
		return fe.Field() + " é inválido"
	}
}

func boundMessage(fe validator.FieldError, word string) string {
	switch fe.Kind() {
	case reflect.String:
		return fmt.Sprintf("%s: %s de %s caracteres", fe.Field(), word, fe.Param())
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("%s: %s de %s itens", fe.Field(), word, fe.Param())
	default:
		return fmt.Sprintf("%s: valor %s é %s", fe.Field(), word, fe.Param())
	}
}
