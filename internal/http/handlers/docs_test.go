package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"html2pdf/internal/config"
)

func TestHandleAPIDocs_ServerURLFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Server.PublicHost = "https://pdf.example.com/"
	cfg.Server.Port = ":8443"

	app := fiber.New()
	app.Get("/api-docs", HandleAPIDocs(cfg))

	resp, err := app.Test(httptest.NewRequest("GET", "/api-docs", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var doc struct {
		OpenAPI string `json:"openapi"`
		Servers []struct {
			URL string `json:"url"`
		} `json:"servers"`
		Paths map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "3.0.0", doc.OpenAPI)
	require.Len(t, doc.Servers, 1)
	assert.Equal(t, "https://pdf.example.com:8443", doc.Servers[0].URL)
	assert.Contains(t, doc.Paths["/v1/convert-html-to-pdf"], "post")
}
