package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/saja-boys/jinwoo-server/types"
)

// Placeholder strings served when the translation upstream is unreachable.
// The placeholder is localized for the reader: a Korean speaker translating
// outward gets the English notice and vice versa.
const (
	translateUnavailableEN = "[Translation service unavailable]"
	translateUnavailableKO = "[번역 서비스를 사용할 수 없습니다]"

	// translateFailedMarker fills translatedText when a 2xx response carries
	// no translation. Soft fail: no error marker, the placeholder renders.
	translateFailedMarker = "Translation failed"
)

// TranslationClient calls a MyMemory-style public translation endpoint.
// Translate never fails hard; degradation is encoded in the result.
type TranslationClient struct {
	URL  string
	HTTP *http.Client
}

// NewTranslationClient creates a translation client.
func NewTranslationClient(endpoint string, timeout time.Duration) *TranslationClient {
	return &TranslationClient{
		URL:  endpoint,
		HTTP: &http.Client{Timeout: timeout},
	}
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
}

// Translate converts text between the fixed ko/en pair. The direction comes
// only from sourceIsKorean; there is no language detection.
func (c *TranslationClient) Translate(ctx context.Context, text string, sourceIsKorean bool) types.TranslationResult {
	sourceLang, targetLang := "en", "ko"
	if sourceIsKorean {
		sourceLang, targetLang = "ko", "en"
	}

	query := url.Values{}
	query.Set("q", text)
	query.Set("langpair", sourceLang+"|"+targetLang)
	endpoint := c.URL + "?" + query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return unavailableResult(text, sourceIsKorean)
	}

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return unavailableResult(text, sourceIsKorean)
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return unavailableResult(text, sourceIsKorean)
	}

	var out myMemoryResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return unavailableResult(text, sourceIsKorean)
	}

	translated := out.ResponseData.TranslatedText
	if translated == "" {
		translated = translateFailedMarker
	}

	return types.TranslationResult{
		TranslatedText: translated,
		OriginalText:   text,
		SourceLang:     sourceLang,
		TargetLang:     targetLang,
	}
}

// unavailableResult encodes a hard upstream failure as data: a localized
// placeholder plus the error marker, with no language fields.
func unavailableResult(text string, sourceIsKorean bool) types.TranslationResult {
	placeholder := translateUnavailableKO
	if sourceIsKorean {
		placeholder = translateUnavailableEN
	}
	return types.TranslationResult{
		TranslatedText: placeholder,
		OriginalText:   text,
		Error:          "Translation service failed",
	}
}
