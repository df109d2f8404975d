package domain

import "strings"

// Option defaults applied independently per field.
const (
	DefaultPageSize = "A4"
	DefaultMargin   = "10mm"
	DefaultScale    = 1.0
)

// Margins holds one length token per side, e.g. "10mm".
type Margins struct {
	Top    string
	Right  string
	Bottom string
	Left   string
}

// ConversionRequest is the validated unit of work.
type ConversionRequest struct {
	Content  string
	PageSize string
	Margins  Margins
	Scale    float64
}

// NormalizeRequest turns a decoded JSON payload into a ConversionRequest.
// Only the html field is required; every option is defaulted on its own and
// passed through otherwise.
func NormalizeRequest(payload map[string]any) (ConversionRequest, error) {
	html, ok := payload["html"].(string)
	if !ok || strings.TrimSpace(html) == "" {
		return ConversionRequest{}, ErrMissingContent
	}

	opts, _ := payload["options"].(map[string]any)

	return ConversionRequest{
		Content:  html,
		PageSize: stringOption(opts, "pageSize", DefaultPageSize),
		Margins: Margins{
			Top:    stringOption(opts, "marginTop", DefaultMargin),
			Right:  stringOption(opts, "marginRight", DefaultMargin),
			Bottom: stringOption(opts, "marginBottom", DefaultMargin),
			Left:   stringOption(opts, "marginLeft", DefaultMargin),
		},
		Scale: numberOption(opts, "zoom", DefaultScale),
	}, nil
}

func stringOption(opts map[string]any, key, def string) string {
	if v, ok := opts[key].(string); ok && v != "" {
		return v
	}
	return def
}

func numberOption(opts map[string]any, key string, def float64) float64 {
	switch v := opts[key].(type) {
	case float64:
		if v != 0 {
			return v
		}
	case int:
		if v != 0 {
			return float64(v)
		}
	}
	return def
}
