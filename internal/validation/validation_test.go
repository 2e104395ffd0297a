package validation

import (
	"errors"
	"testing"

	"pixelgate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detailsOf(t *testing.T, err error) []FieldError {
	t.Helper()
	var verr *Error
	require.True(t, errors.As(err, &verr), "expected *validation.Error, got %v", err)
	return verr.Details
}

func TestParsePixel(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		in, err := ParsePixel([]byte(`{"label":"Main","pixelId":"1234567890","isDefault":true,"defaultEvents":["Lead","PageView","Lead"]}`))
		require.NoError(t, err)
		assert.Equal(t, "Main", in.Label)
		assert.True(t, in.IsDefault)
		assert.Equal(t, []models.MetaEvent{models.EventLead, models.EventPageView}, in.DefaultEvents)
	})

	t.Run("Pixel ID Must Be Digits", func(t *testing.T) {
		_, err := ParsePixel([]byte(`{"label":"Main","pixelId":"12345abc90"}`))
		require.Error(t, err)
		assert.Equal(t, "Pixel ID deve conter apenas números (10-20 dígitos)", err.Error())
		assert.Equal(t, "pixelId", detailsOf(t, err)[0].Path)
	})

	t.Run("Pixel ID Too Short", func(t *testing.T) {
		_, err := ParsePixel([]byte(`{"label":"Main","pixelId":"123"}`))
		assert.Error(t, err)
	})

	t.Run("Missing Label", func(t *testing.T) {
		_, err := ParsePixel([]byte(`{"pixelId":"1234567890"}`))
		require.Error(t, err)
		assert.Equal(t, "Informe um nome para o pixel", err.Error())
	})

	t.Run("Unknown Event", func(t *testing.T) {
		_, err := ParsePixel([]byte(`{"label":"Main","pixelId":"1234567890","defaultEvents":["PageView","Subscribe"]}`))
		require.Error(t, err)
		assert.Equal(t, "defaultEvents[1]", detailsOf(t, err)[0].Path)
	})

	t.Run("Bad JSON", func(t *testing.T) {
		_, err := ParsePixel([]byte(`{"label":`))
		require.Error(t, err)
		assert.Equal(t, "JSON inválido", err.Error())
	})

	t.Run("Wrong Type", func(t *testing.T) {
		_, err := ParsePixel([]byte(`{"label":"Main","pixelId":"1234567890","isDefault":"yes"}`))
		require.Error(t, err)
		assert.Equal(t, "isDefault", detailsOf(t, err)[0].Path)
	})
}

func TestParseProduct(t *testing.T) {
	base := `"title":"Fone","pixelConfigId":"p1","events":["ViewContent","ViewContent"],"status":"active"`

	t.Run("Https Allow Listed", func(t *testing.T) {
		in, err := ParseProduct([]byte(`{` + base + `,"affiliateUrl":"https://shopee.com/x"}`))
		require.NoError(t, err)
		assert.Equal(t, []models.MetaEvent{models.EventViewContent}, in.Events)
	})

	t.Run("Plain Http Rejected", func(t *testing.T) {
		_, err := ParseProduct([]byte(`{` + base + `,"affiliateUrl":"http://shopee.com/x"}`))
		require.Error(t, err)
		assert.Equal(t, "affiliateUrl", detailsOf(t, err)[0].Path)
	})

	t.Run("Unknown Host Rejected", func(t *testing.T) {
		_, err := ParseProduct([]byte(`{` + base + `,"affiliateUrl":"https://randomsite.com/x"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "shopee/aliexpress/mercadolivre/amazon")
	})

	t.Run("Regional Domains Accepted", func(t *testing.T) {
		for _, u := range []string{"https://www.amazon.com.br/dp/1", "https://pt.aliexpress.com/item/2", "https://produto.mercadolivre.com.br/MLB-3"} {
			assert.True(t, IsAllowedAffiliateURL(u), u)
		}
	})

	t.Run("Active Needs Pixel", func(t *testing.T) {
		_, err := ParseProduct([]byte(`{"title":"Fone","affiliateUrl":"https://shopee.com/x","events":["Lead"],"status":"active"}`))
		require.Error(t, err)
		assert.Equal(t, "Links ativos precisam de um pixel selecionado", err.Error())
	})

	t.Run("Inactive Without Pixel", func(t *testing.T) {
		_, err := ParseProduct([]byte(`{"title":"Fone","affiliateUrl":"https://shopee.com/x","events":["Lead"],"status":"inactive"}`))
		assert.NoError(t, err)
	})

	t.Run("Needs Events", func(t *testing.T) {
		_, err := ParseProduct([]byte(`{"title":"Fone","affiliateUrl":"https://shopee.com/x","pixelConfigId":"p1","events":[],"status":"active"}`))
		require.Error(t, err)
		assert.Equal(t, "Selecione pelo menos um evento", err.Error())
	})

	t.Run("Bad Status", func(t *testing.T) {
		_, err := ParseProduct([]byte(`{` + `"title":"Fone","pixelConfigId":"p1","events":["Lead"],"status":"paused","affiliateUrl":"https://shopee.com/x"}`))
		require.Error(t, err)
		assert.Equal(t, "status", detailsOf(t, err)[0].Path)
	})
}

const validPage = `{
	"headline":"Grupo VIP",
	"buttonText":"Entrar",
	"whatsappUrl":"https://chat.whatsapp.com/abc",
	"events":["PageView","Lead","PageView"],
	"redirectEvent":"Lead",
	"status":"active"`

func TestParseWhatsAppPage(t *testing.T) {
	t.Run("Minimal", func(t *testing.T) {
		in, err := ParseWhatsAppPage([]byte(validPage + `}`))
		require.NoError(t, err)
		assert.Equal(t, []models.MetaEvent{models.EventPageView, models.EventLead}, in.Events)
		assert.Nil(t, in.RedirectDelay)
		assert.Nil(t, in.Cards())
		assert.Nil(t, in.CarouselItems())
	})

	t.Run("WhatsApp Hosts", func(t *testing.T) {
		assert.True(t, IsAllowedWhatsAppURL("https://wa.me/5511999999999"))
		assert.True(t, IsAllowedWhatsAppURL("https://chat.whatsapp.com/xyz"))
		assert.False(t, IsAllowedWhatsAppURL("http://wa.me/5511999999999"))
		assert.False(t, IsAllowedWhatsAppURL("https://evilwa.me/x"))
		assert.False(t, IsAllowedWhatsAppURL("https://chat.whatsapp.com.evil.io/x"))
	})

	t.Run("Redirect Delay Range", func(t *testing.T) {
		_, err := ParseWhatsAppPage([]byte(validPage + `,"redirectDelay":31}`))
		require.Error(t, err)
		assert.Equal(t, "Tempo máximo de 30 segundos", err.Error())

		_, err = ParseWhatsAppPage([]byte(validPage + `,"redirectDelay":0}`))
		require.Error(t, err)
		assert.Equal(t, "Tempo mínimo de 1 segundo", err.Error())
	})

	t.Run("Both Modes Rejected", func(t *testing.T) {
		_, err := ParseWhatsAppPage([]byte(validPage + `,"redirectEnabled":true,"vacancyCounterEnabled":true}`))
		require.Error(t, err)
		assert.Equal(t, "vacancyCounterEnabled", detailsOf(t, err)[0].Path)
	})

	t.Run("Mode Conflicting With Flags", func(t *testing.T) {
		_, err := ParseWhatsAppPage([]byte(validPage + `,"redirectMode":"manual_only","redirectEnabled":true}`))
		require.Error(t, err)
		assert.Equal(t, "redirectMode", detailsOf(t, err)[0].Path)

		_, err = ParseWhatsAppPage([]byte(validPage + `,"redirectMode":"vacancy_counter","redirectEnabled":false,"vacancyCounterEnabled":true}`))
		assert.NoError(t, err)
	})

	t.Run("Benefit Cards", func(t *testing.T) {
		in, err := ParseWhatsAppPage([]byte(validPage + `,"benefitCards":[{"emoji":"🔥","title":"Ofertas"}]}`))
		require.NoError(t, err)
		assert.Equal(t, []models.BenefitCard{{Emoji: "🔥", Title: "Ofertas"}}, in.Cards())

		_, err = ParseWhatsAppPage([]byte(validPage + `,"benefitCards":[{"emoji":"","title":"Ofertas"}]}`))
		require.Error(t, err)
		assert.Equal(t, "benefitCards[0].emoji", detailsOf(t, err)[0].Path)

		nine := `{"emoji":"a","title":"b"}`
		cards := nine
		for i := 0; i < 8; i++ {
			cards += "," + nine
		}
		_, err = ParseWhatsAppPage([]byte(validPage + `,"benefitCards":[` + cards + `]}`))
		require.Error(t, err)
		assert.Equal(t, "Máximo de 8 cards de benefício", err.Error())
	})

	t.Run("Carousel Items By Type", func(t *testing.T) {
		_, err := ParseWhatsAppPage([]byte(validPage + `,"socialProofCarouselItems":[{"type":"text","description":"Adorei"}]}`))
		require.Error(t, err)
		assert.Equal(t, "socialProofCarouselItems[0].author", detailsOf(t, err)[0].Path)

		_, err = ParseWhatsAppPage([]byte(validPage + `,"socialProofCarouselItems":[{"type":"image","imageUrl":"http://x.com/a.png"}]}`))
		require.Error(t, err)
		assert.Equal(t, "Depoimentos de imagem precisam de uma URL https", err.Error())

		in, err := ParseWhatsAppPage([]byte(validPage + `,"socialProofCarouselItems":[{"type":"image","imageUrl":"https://x.com/a.png"},{"type":"text","description":"Top","author":"Ana","city":"Recife"}]}`))
		require.NoError(t, err)
		assert.Len(t, in.CarouselItems(), 2)
	})

	t.Run("Group Image", func(t *testing.T) {
		_, err := ParseWhatsAppPage([]byte(validPage + `,"groupImageUrl":"https://cdn.example.com/p.webp?size=large"}`))
		assert.NoError(t, err)

		_, err = ParseWhatsAppPage([]byte(validPage + `,"groupImageUrl":"https://example.com/file.pdf"}`))
		assert.Error(t, err)

		in, err := ParseWhatsAppPage([]byte(validPage + `,"groupImageUrl":""}`))
		require.NoError(t, err)
		assert.Equal(t, "", *in.GroupImageURL)
	})

	t.Run("Participant Count", func(t *testing.T) {
		_, err := ParseWhatsAppPage([]byte(validPage + `,"participantCount":1000000}`))
		require.Error(t, err)
		assert.Equal(t, "Quantidade deve ser menor que 1.000.000", err.Error())

		_, err = ParseWhatsAppPage([]byte(validPage + `,"participantCount":1.5}`))
		assert.Error(t, err)
	})

	t.Run("Colors And Sizes", func(t *testing.T) {
		_, err := ParseWhatsAppPage([]byte(validPage + `,"vacancyCountColor":"#ff0000","vacancyCountFontSize":"large"}`))
		assert.NoError(t, err)

		_, err = ParseWhatsAppPage([]byte(validPage + `,"vacancyCountColor":"red"}`))
		assert.Error(t, err)

		_, err = ParseWhatsAppPage([]byte(validPage + `,"emojiSize":"huge"}`))
		assert.Error(t, err)
	})

	t.Run("Header Image Must Be Https", func(t *testing.T) {
		_, err := ParseWhatsAppPage([]byte(validPage + `,"headerImageUrl":"http://x.com/a.png"}`))
		assert.Error(t, err)

		in, err := ParseWhatsAppPage([]byte(validPage + `,"headerImageUrl":""}`))
		require.NoError(t, err)
		require.NotNil(t, in.HeaderImageURL)
		assert.Equal(t, "", *in.HeaderImageURL)
	})

	t.Run("Collects Every Violation", func(t *testing.T) {
		_, err := ParseWhatsAppPage([]byte(`{"status":"active"}`))
		require.Error(t, err)
		assert.Greater(t, len(detailsOf(t, err)), 3)
	})
}

func TestParseAppearance(t *testing.T) {
	in, err := ParseAppearance([]byte(`{"redirectText":"Aguarde...","backgroundColor":"#fff","borderEnabled":true}`))
	require.NoError(t, err)
	assert.True(t, in.BorderEnabled)

	_, err = ParseAppearance([]byte(`{"redirectText":""}`))
	assert.Error(t, err)

	_, err = ParseAppearance([]byte(`{"redirectText":"ok","backgroundColor":"blue"}`))
	assert.Error(t, err)
}

func TestParseTrackRedirect(t *testing.T) {
	in, err := ParseTrackRedirect([]byte(`{"pageId":"6f1c1c50-33c4-4f27-9b8e-5d1e0f6b7a10","eventName":"Lead","eventId":"ev-1"}`))
	require.NoError(t, err)
	assert.Equal(t, models.EventLead, in.EventName)

	_, err = ParseTrackRedirect([]byte(`{"pageId":"nope","eventName":"Lead","eventId":"ev-1"}`))
	assert.Error(t, err)

	_, err = ParseTrackRedirect([]byte(`{"pageId":"6f1c1c50-33c4-4f27-9b8e-5d1e0f6b7a10","eventName":"Lead"}`))
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	in := &PixelInput{Label: "Main", PixelID: "1234567890", DefaultEvents: []models.MetaEvent{models.EventLead, models.EventLead}}
	require.NoError(t, Check(in))
	assert.Equal(t, []models.MetaEvent{models.EventLead}, in.DefaultEvents)
}
