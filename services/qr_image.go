package services

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/skip2/go-qrcode"
	"github.com/vaibhavvyavahare/railtrace/models"
	"github.com/vaibhavvyavahare/railtrace/utils"
)

// QRRenderer turns a QR payload into an embeddable image URL
type QRRenderer interface {
	DataURL(payload models.QRPayload) (string, error)
}

// PNGRenderer renders QR codes as base64 PNG data URLs
type PNGRenderer struct {
	size int
}

// NewPNGRenderer creates a renderer producing size x size images
func NewPNGRenderer(size int) *PNGRenderer {
	return &PNGRenderer{size: size}
}

// DataURL encodes the payload as JSON and renders it
func (r *PNGRenderer) DataURL(payload models.QRPayload) (string, error) {
	content, err := EncodeQRPayload(payload)
	if err != nil {
		return "", err
	}

	png, err := qrcode.Encode(content, qrcode.Medium, r.size)
	if err != nil {
		return "", fmt.Errorf("failed to render QR code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// EncodeQRPayload returns the JSON text embedded in a QR code
func EncodeQRPayload(payload models.QRPayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR payload: %w", err)
	}
	return string(raw), nil
}

// DecodeQRPayload parses scanned QR text back into a payload
func DecodeQRPayload(raw string) (models.QRPayload, error) {
	var payload models.QRPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return payload, ErrInvalidQRData.WithDetail(err.Error())
	}
	if err := utils.ValidateStruct(&payload); err != nil {
		appErr, _ := utils.AsAppError(err)
		return payload, ErrInvalidQRData.WithDetail(appErr.Detail)
	}
	return payload, nil
}
