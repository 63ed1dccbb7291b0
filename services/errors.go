package services

import (
	"net/http"

	"github.com/vaibhavvyavahare/railtrace/utils"
)

// Domain errors returned by the services. Controllers render them with their
// status and code; callers match them with errors.Is.
var (
	ErrOrderNotFound         = utils.NotFound("ORDER_NOT_FOUND", "Order not found for this vendor")
	ErrOrderExists           = utils.Conflict("ORDER_EXISTS", "An order with this id already exists")
	ErrOrderAlreadyProcessed = utils.BadRequest("ORDER_ALREADY_PROCESSED", "Order has already been processed")
	ErrOrderNotProcessed     = utils.BadRequest("ORDER_NOT_PROCESSED", "QR codes have not been generated for this order")
	ErrInvalidTransition     = utils.BadRequest("INVALID_STATUS_TRANSITION", "Order status cannot be changed from its current state")
	ErrVendorNotFound        = utils.NotFound("VENDOR_NOT_FOUND", "Vendor not found")
	ErrLotNotFound           = utils.NotFound("LOT_NOT_FOUND", "Lot not found")
	ErrBatchNotFound         = utils.NotFound("BATCH_NOT_FOUND", "Batch not found")
	ErrFittingNotFound       = utils.NotFound("FITTING_NOT_FOUND", "Fitting not found")
	ErrWorkerNotFound        = utils.NotFound("WORKER_NOT_FOUND", "Worker not found")
	ErrOfficerNotFound       = utils.NotFound("OFFICER_NOT_FOUND", "Officer not found")
	ErrRecordNotFound        = utils.NotFound("MAINTENANCE_RECORD_NOT_FOUND", "Maintenance record not found")
	ErrAlertNotFound         = utils.NotFound("ALERT_NOT_FOUND", "Alert not found")
	ErrFileNotFound          = utils.NotFound("FILE_NOT_FOUND", "File not found")
	ErrRelatedNotFound       = utils.NotFound("RELATED_NOT_FOUND", "No order, batch or fitting with this id")
	ErrAlreadyInstalled      = utils.BadRequest("ALREADY_INSTALLED", "Fitting has already been installed")
	ErrInvalidQRData         = utils.BadRequest("INVALID_QR_DATA", "QR data is not a valid RailTrace payload")
	ErrQuantityTooLarge      = utils.BadRequest("QUANTITY_TOO_LARGE", "Order quantity exceeds the allowed maximum")

	ErrUserNotFound       = utils.NotFound("USER_NOT_FOUND", "User not found")
	ErrInvalidCredentials = utils.Unauthorized("INVALID_CREDENTIALS", "Invalid credentials")
	ErrUserExists         = utils.Conflict("USER_EXISTS", "A user with this id already exists")
	ErrInvalidUserID      = utils.BadRequest("VALIDATION_ERROR", "User id has the wrong prefix for this role")
	ErrRateLimited        = utils.NewAppError(http.StatusTooManyRequests, "RATE_LIMITED", "Too many failed login attempts, try again later")

	ErrAIUpstream         = utils.NewAppError(http.StatusInternalServerError, "AI_UPSTREAM_ERROR", "AI service request failed")
	ErrStorageUnavailable = utils.NewAppError(http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "File storage is not configured")
)

// dbError wraps a gorm failure as a 500 DATABASE_ERROR
func dbError(message string, err error) error {
	return utils.Internal("DATABASE_ERROR", message, err)
}
