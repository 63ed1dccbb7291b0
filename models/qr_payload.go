package models

const (
	QRTypeBatch = "batch"
	QRTypeItem  = "item"
)

// QRPayload is the JSON document embedded in every generated QR code
type QRPayload struct {
	Type      string `json:"type" validate:"required,oneof=batch item"`
	FittingID string `json:"fitting_id,omitempty" validate:"required_if=Type item"`
	BatchID   string `json:"batch_id" validate:"required"`
	OrderID   string `json:"order_id" validate:"required"`
	VendorID  string `json:"vendor_id" validate:"required"`
}
