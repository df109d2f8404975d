package handlers

import (
	"github.com/gofiber/fiber/v2"

	"html2pdf/internal/config"
	"html2pdf/internal/domain"
)

// HandleAPIDocs serves the OpenAPI description of the conversion API.
func HandleAPIDocs(cfg config.Config) fiber.Handler {
	doc := openAPIDocument(cfg.PublicURL())
	return func(c *fiber.Ctx) error {
		return c.JSON(doc)
	}
}

func openAPIDocument(serverURL string) fiber.Map {
	errorSchema := fiber.Map{
		"type": "object",
		"properties": fiber.Map{
			"error": fiber.Map{"type": "string"},
		},
	}
	margin := func(desc string) fiber.Map {
		return fiber.Map{"type": "string", "description": desc, "example": domain.DefaultMargin}
	}

	requestSchema := fiber.Map{
		"type":     "object",
		"required": []string{"html"},
		"properties": fiber.Map{
			"html": fiber.Map{
				"type":        "string",
				"description": "HTML content",
				"example":     "<html><body><h1>Hello, World!</h1></body></html>",
			},
			"options": fiber.Map{
				"type": "object",
				"properties": fiber.Map{
					"pageSize":     fiber.Map{"type": "string", "description": "Paper format", "example": domain.DefaultPageSize},
					"marginTop":    margin("Top margin"),
					"marginBottom": margin("Bottom margin"),
					"marginLeft":   margin("Left margin"),
					"marginRight":  margin("Right margin"),
					"zoom":         fiber.Map{"type": "number", "description": "Scale factor", "example": domain.DefaultScale},
				},
			},
		},
	}

	return fiber.Map{
		"openapi": "3.0.0",
		"info": fiber.Map{
			"title":       "HTML to PDF API",
			"version":     "1.0.0",
			"description": "Converts an HTML document into a PDF.",
		},
		"servers": []fiber.Map{{"url": serverURL}},
		"paths": fiber.Map{
			"/v1/convert-html-to-pdf": fiber.Map{
				"post": fiber.Map{
					"summary": "Convert HTML to PDF",
					"requestBody": fiber.Map{
						"required": true,
						"content": fiber.Map{
							"application/json":                  fiber.Map{"schema": requestSchema},
							"application/x-www-form-urlencoded": fiber.Map{"schema": requestSchema},
						},
					},
					"responses": fiber.Map{
						"200": fiber.Map{
							"description": "PDF file",
							"content": fiber.Map{
								"application/pdf": fiber.Map{"schema": fiber.Map{"type": "string", "format": "binary"}},
							},
						},
						"422": fiber.Map{
							"description": "The html parameter is missing",
							"content":     fiber.Map{"application/json": fiber.Map{"schema": errorSchema}},
						},
						"500": fiber.Map{
							"description": "Conversion failed",
							"content":     fiber.Map{"application/json": fiber.Map{"schema": errorSchema}},
						},
					},
				},
			},
		},
	}
}
