package render

import (
	"errors"

	"github.com/skip2/go-qrcode"
)

const defaultQRCodeSizePx = 256

// ShareCodePNG returns a PNG-encoded QR code pointing at a frame permalink.
func ShareCodePNG(permalink string, sizePx int) ([]byte, error) {
	if permalink == "" {
		return nil, errors.New("empty permalink")
	}
	if sizePx <= 0 {
		sizePx = defaultQRCodeSizePx
	}
	return qrcode.Encode(permalink, qrcode.Medium, sizePx)
}
