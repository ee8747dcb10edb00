package ui

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// QR renders content as a terminal QR code using half-block characters.
func QR(content string) (string, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("qr: %w", err)
	}
	return q.ToSmallString(false), nil
}

// AddressQR renders a Stacks address as a QR code with a caption.
func AddressQR(address string) (string, error) {
	code, err := QR(address)
	if err != nil {
		return "", err
	}
	return code + "\n" + Addr(address) + "\n", nil
}
