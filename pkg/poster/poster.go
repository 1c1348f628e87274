package poster

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"strings"

	"github.com/fogleman/gg"
	"github.com/nfnt/resize"
	"github.com/skip2/go-qrcode"
)

const (
	width  = 1024
	height = 1024
	qrSize = 200
)

// Params describes one invitation poster.
type Params struct {
	FunctionName   string
	Location       string
	Date           string
	EmojiVibe      []string
	OrganizerAlias string
	Description    string
	EventURL       string
}

// Render draws a local invitation poster: a vertical two-tone gradient,
// the function details, and a QR code linking to the event page. It is
// the fallback when the generated artwork is unavailable.
func Render(p Params) ([]byte, error) {
	dc := gg.NewContext(width, height)

	grad := gg.NewLinearGradient(0, 0, 0, height)
	grad.AddColorStop(0, color.RGBA{R: 76, G: 29, B: 149, A: 255})
	grad.AddColorStop(1, color.RGBA{R: 190, G: 24, B: 93, A: 255})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, width, height)
	dc.Fill()

	dc.SetColor(color.White)
	if err := dc.LoadFontFace("assets/fonts/Roboto-Bold.ttf", 64); err == nil {
		dc.DrawStringWrapped(p.FunctionName, width/2, 180, 0.5, 0.5, width-160, 1.3, gg.AlignCenter)
	} else {
		dc.DrawStringAnchored(p.FunctionName, width/2, 180, 0.5, 0.5)
	}

	// missing font falls back to the context's default face
	_ = dc.LoadFontFace("assets/fonts/Roboto-Regular.ttf", 36)
	lines := []string{
		strings.Join(p.EmojiVibe, " "),
		p.Location,
		p.Date,
		fmt.Sprintf("hosted by %s", p.OrganizerAlias),
	}
	y := 360.0
	for _, line := range lines {
		if line == "" {
			continue
		}
		dc.DrawStringAnchored(line, width/2, y, 0.5, 0.5)
		y += 70
	}

	if p.Description != "" {
		dc.DrawStringWrapped(p.Description, width/2, y+60, 0.5, 0, width-200, 1.4, gg.AlignCenter)
	}

	if p.EventURL != "" {
		if err := drawQR(dc, p.EventURL); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawQR(dc *gg.Context, url string) error {
	qr, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return err
	}
	qr.BackgroundColor = color.White
	qr.ForegroundColor = color.Black

	img := resize.Resize(qrSize, qrSize, qr.Image(qrSize*2), resize.Lanczos3)

	x := float64(width-qrSize) / 2
	y := float64(height - qrSize - 80)
	dc.SetColor(color.White)
	dc.DrawRoundedRectangle(x-12, y-12, qrSize+24, qrSize+24, 16)
	dc.Fill()
	dc.DrawImage(img, int(x), int(y))
	return nil
}
