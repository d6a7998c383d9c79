package capture

import (
	"image"
	"image/color"
	"image/draw"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const overlayMargin = 12

// timestampLine formats the capture time the way it appears on photos,
// e.g. "Aug 31, 2026, 02:05:09 PM".
func timestampLine(t time.Time) string {
	return t.Format("Jan 2, 2006, 03:04:05 PM")
}

// burnOverlay renders the lines right-aligned in the bottom-right corner
// with a one-pixel shadow for legibility on bright scenes.
func burnOverlay(dst draw.Image, lines []string) {
	face := basicfont.Face7x13
	bounds := dst.Bounds()
	lineHeight := face.Metrics().Height.Ceil() + 4
	baseline := bounds.Max.Y - overlayMargin - (len(lines)-1)*lineHeight

	for i, line := range lines {
		width := font.MeasureString(face, line).Ceil()
		x := bounds.Max.X - overlayMargin - width
		y := baseline + i*lineHeight
		drawString(dst, face, line, x+1, y+1, color.Black)
		drawString(dst, face, line, x, y, color.White)
	}
}

func drawString(dst draw.Image, face font.Face, s string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
