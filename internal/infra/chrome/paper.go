package chrome

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/chromedp/cdproto/page"

	"html2pdf/internal/config"
	"html2pdf/internal/domain"
)

// CSS pixels per unit; Chrome prints at 96px per inch.
var unitToPixels = map[string]float64{
	"px": 1,
	"in": 96,
	"cm": 37.8,
	"mm": 3.78,
}

// lengthToInches parses a length token such as "10mm", "1in" or "40".
// A value without a known unit is taken as CSS pixels.
func lengthToInches(s string) (float64, error) {
	text := strings.TrimSpace(s)
	unit := "px"
	value := text
	if len(text) > 2 {
		if _, ok := unitToPixels[strings.ToLower(text[len(text)-2:])]; ok {
			unit = strings.ToLower(text[len(text)-2:])
			value = text[:len(text)-2]
		}
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("failed to parse length %q", s)
	}
	return n * unitToPixels[unit] / 96, nil
}

// lookupPaper resolves a paper format name case-insensitively.
func lookupPaper(name string, sizes map[string]config.PaperSize) (config.PaperSize, error) {
	size, ok := sizes[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return config.PaperSize{}, fmt.Errorf("unknown paper format %q", name)
	}
	return size, nil
}

// printParams builds the CDP print command for cfg.
func printParams(cfg domain.PrintConfig, sizes map[string]config.PaperSize) (*page.PrintToPDFParams, error) {
	paper, err := lookupPaper(cfg.Format, sizes)
	if err != nil {
		return nil, err
	}

	var margins [4]float64
	for i, m := range []string{cfg.Margins.Top, cfg.Margins.Right, cfg.Margins.Bottom, cfg.Margins.Left} {
		if margins[i], err = lengthToInches(m); err != nil {
			return nil, err
		}
	}

	return page.PrintToPDF().
		WithPaperWidth(paper.Width).
		WithPaperHeight(paper.Height).
		WithMarginTop(margins[0]).
		WithMarginRight(margins[1]).
		WithMarginBottom(margins[2]).
		WithMarginLeft(margins[3]).
		WithPrintBackground(cfg.PrintBackground).
		WithScale(cfg.Scale).
		WithPreferCSSPageSize(cfg.PreferCSSPageSize), nil
}
