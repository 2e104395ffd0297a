package services

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

type QROptions struct {
	Content string
	Size    int
	FgColor string // "#000000" or "#000"
	BgColor string
}

// QRService renders the QR codes shown next to public links in the admin
// console.
type QRService struct{}

func NewQRService() *QRService {
	return &QRService{}
}

func (s *QRService) normalizeSize(size int) int {
	switch {
	case size <= 0:
		return defaultQRSize
	case size > maxQRSize:
		return maxQRSize
	}
	return size
}

// PNG encodes opts.Content as a PNG image.
func (s *QRService) PNG(opts QROptions) ([]byte, error) {
	qr, err := qrcode.New(opts.Content, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	qr.ForegroundColor = s.parseHexColor(opts.FgColor, color.Black)
	qr.BackgroundColor = s.parseHexColor(opts.BgColor, color.White)

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(s.normalizeSize(opts.Size))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SVG draws one unit square per dark module. Colors are written as given.
func (s *QRService) SVG(opts QROptions) (string, error) {
	qr, err := qrcode.New(opts.Content, qrcode.Medium)
	if err != nil {
		return "", err
	}
	qr.DisableBorder = true
	bitmap := qr.Bitmap()
	n := len(bitmap)

	fg, bg := opts.FgColor, opts.BgColor
	if fg == "" {
		fg = "#000000"
	}
	if bg == "" {
		bg = "#FFFFFF"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" shape-rendering="crispEdges">`, n, n)
	fmt.Fprintf(&sb, `<rect width="100%%" height="100%%" fill="%s"/>`, bg)
	fmt.Fprintf(&sb, `<path fill="%s" d="`, fg)
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&sb, "M%d %dh1v1h-1z", x, y)
			}
		}
	}
	sb.WriteString(`"/></svg>`)
	return sb.String(), nil
}

// parseHexColor accepts #rgb and #rrggbb and falls back to def otherwise.
func (s *QRService) parseHexColor(hex string, def color.Color) color.Color {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return def
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return def
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
