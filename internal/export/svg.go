package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/aerosim/internal/viz"
)

// CanvasToSVG converts a Braille canvas, such as a mesh planform, to SVG.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ccff">
`, width, height, width, height)

	dotRadius := scale * 0.4
	for y := 0; y < canvas.Height*4; y++ {
		for x := 0; x < canvas.Width*2; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// Curve is one plotted series with axis labels.
type Curve struct {
	X, Y           []float64
	XLabel, YLabel string
	Stroke         string
}

// CurveToSVG plots y against x with padded bounds and axis labels. Points
// with a non-finite coordinate are skipped.
func CurveToSVG(c Curve, width, height int) string {
	var xs, ys []float64
	for i := range c.X {
		if i < len(c.Y) && finite(c.X[i]) && finite(c.Y[i]) {
			xs = append(xs, c.X[i])
			ys = append(ys, c.Y[i])
		}
	}
	if len(xs) < 2 {
		return ""
	}
	stroke := c.Stroke
	if stroke == "" {
		stroke = "#00ff88"
	}

	minX, maxX := bounds(xs)
	minY, maxY := bounds(ys)
	const margin = 40.0
	plotW, plotH := float64(width)-2*margin, float64(height)-2*margin
	px := func(x float64) float64 { return margin + (x-minX)/(maxX-minX)*plotW }
	py := func(y float64) float64 { return margin + plotH - (y-minY)/(maxY-minY)*plotH }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g stroke="#444466" fill="none"><rect x="%.0f" y="%.0f" width="%.0f" height="%.0f"/></g>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, margin, margin, plotW, plotH, stroke)

	for i := range xs {
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", px(xs[i]), py(ys[i]))
	}
	sb.WriteString("\"/>\n")

	fmt.Fprintf(&sb, `<g fill="#888899" font-family="monospace" font-size="11">
<text x="%.0f" y="%.0f">%.4g</text>
<text x="%.0f" y="%.0f" text-anchor="end">%.4g</text>
<text x="%.0f" y="%.0f" text-anchor="end">%.4g</text>
<text x="%.0f" y="%.0f">%.4g</text>
<text x="%.1f" y="%d" text-anchor="middle">%s</text>
<text x="12" y="%.1f" transform="rotate(-90 12 %.1f)" text-anchor="middle">%s</text>
</g>
</svg>`,
		margin, float64(height)-margin+14, minX,
		float64(width)-margin, float64(height)-margin+14, maxX,
		margin-4, float64(height)-margin, minY,
		4.0, margin-4, maxY,
		float64(width)/2, height-6, escape(c.XLabel),
		float64(height)/2, float64(height)/2, escape(c.YLabel))
	return sb.String()
}

// bounds returns the range of v padded by 10%, widened when flat.
func bounds(v []float64) (float64, float64) {
	lo, hi := v[0], v[0]
	for _, x := range v {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	r := hi - lo
	if r == 0 {
		r = math.Max(math.Abs(lo), 1)
	}
	return lo - 0.1*r, hi + 0.1*r
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }
