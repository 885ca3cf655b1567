package reporting

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Chart geometry in pixels.
const (
	chartWidth   = 1000
	chartHeight  = 600
	marginLeft   = 70
	marginRight  = 30
	marginTop    = 50
	marginBottom = 60
)

var (
	colorBackground = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorBar        = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorGrid       = color.RGBA{R: 220, G: 220, B: 220, A: 255}
	colorInk        = color.RGBA{A: 255}
)

// RenderHistogramPNG draws the score distribution as a bar chart and encodes it as PNG.
func RenderHistogramPNG(w io.Writer, bins []HistogramBin) error {
	img := image.NewRGBA(image.Rect(0, 0, chartWidth, chartHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: colorBackground}, image.Point{}, draw.Src)

	plotW := chartWidth - marginLeft - marginRight
	plotH := chartHeight - marginTop - marginBottom
	baseY := marginTop + plotH

	maxCount := 0
	for _, b := range bins {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	yMax := niceCeil(maxCount)

	// Horizontal grid with count labels
	const gridLines = 5
	for i := 0; i <= gridLines; i++ {
		y := baseY - plotH*i/gridLines
		fillRect(img, marginLeft, y, marginLeft+plotW, y+1, colorGrid)
		label := fmt.Sprintf("%d", yMax*i/gridLines)
		drawText(img, marginLeft-8-7*len(label), y+4, label)
	}

	if len(bins) > 0 {
		barW := plotW / len(bins)
		for i, b := range bins {
			x0 := marginLeft + i*barW
			h := 0
			if yMax > 0 {
				h = plotH * b.Count / yMax
			}
			if h > 0 {
				fillRect(img, x0, baseY-h, x0+barW, baseY, colorInk)
				fillRect(img, x0+1, baseY-h+1, x0+barW-1, baseY, colorBar)
			}
			label := fmt.Sprintf("%d", b.Lower)
			drawText(img, x0-7*len(label)/2, baseY+18, label)
		}
		label := fmt.Sprintf("%d", bins[len(bins)-1].Upper)
		drawText(img, marginLeft+len(bins)*barW-7*len(label)/2, baseY+18, label)
	}

	// Axes
	fillRect(img, marginLeft, marginTop, marginLeft+1, baseY+1, colorInk)
	fillRect(img, marginLeft, baseY, marginLeft+plotW, baseY+1, colorInk)

	drawText(img, chartWidth/2-140, marginTop/2, "Distribution of Wallet Credit Scores")
	drawText(img, chartWidth/2-42, chartHeight-15, "Credit Score")
	drawText(img, 8, marginTop-15, "Number of Wallets")

	return png.Encode(w, img)
}

// niceCeil rounds n up to 1, 2 or 5 times a power of ten, at least 5.
func niceCeil(n int) int {
	if n <= 5 {
		return 5
	}
	for step := 1; ; step *= 10 {
		for _, m := range []int{1, 2, 5} {
			if v := m * step * 10; v >= n {
				return v
			}
		}
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	draw.Draw(img, image.Rect(x0, y0, x1, y1), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func drawText(img *image.RGBA, x, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(colorInk),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
