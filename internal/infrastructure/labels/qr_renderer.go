package labels

import (
	"github.com/jimlawless/whereami"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/skladtech/inventory-backend/pkg/e"
)

const qrImageSize = 512

// QRRenderer кодирует полезную нагрузку этикетки в PNG с QR-кодом.
type QRRenderer struct{}

func NewQRRenderer() *QRRenderer {
	return &QRRenderer{}
}

func (r *QRRenderer) Render(payload string) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return png, nil
}
