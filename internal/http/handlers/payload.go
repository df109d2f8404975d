package handlers

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// formOptionKeys are the options accepted as options[key] form fields.
var formOptionKeys = []string{"pageSize", "marginTop", "marginRight", "marginBottom", "marginLeft", "zoom"}

// decodePayload reads the conversion body. An empty body is an empty payload;
// form bodies are mapped onto the same shape as the JSON document.
func decodePayload(c *fiber.Ctx) (map[string]any, error) {
	if len(bytes.TrimSpace(c.Body())) == 0 {
		return map[string]any{}, nil
	}

	ct := utils.ToLower(utils.UnsafeString(c.Request().Header.ContentType()))
	if strings.HasPrefix(ct, fiber.MIMEApplicationForm) || strings.HasPrefix(ct, fiber.MIMEMultipartForm) {
		return formPayload(c), nil
	}

	var payload map[string]any
	if err := c.App().Config().JSONDecoder(c.Body(), &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func formPayload(c *fiber.Ctx) map[string]any {
	payload := map[string]any{}
	if html := c.FormValue("html"); html != "" {
		payload["html"] = utils.CopyString(html)
	}

	opts := map[string]any{}
	for _, key := range formOptionKeys {
		v := c.FormValue("options[" + key + "]")
		if v == "" {
			v = c.FormValue(key)
		}
		if v == "" {
			continue
		}
		if key == "zoom" {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				opts[key] = n
			}
			continue
		}
		opts[key] = utils.CopyString(v)
	}
	if len(opts) > 0 {
		payload["options"] = opts
	}
	return payload
}
