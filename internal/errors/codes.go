package errors

// Error codes returned in the "error" field of every failure response.
// Format: CATEGORY_SPECIFIC_DETAIL. The storefront maps them to copy.

const (
	// ==================== AUTH_ ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong admin passcode
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"

	// ==================== VALIDATION_ ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== RESOURCE_ ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"

	// ==================== PRODUCT_ ====================
	ProductNotFound = "PRODUCT_NOT_FOUND"
	ProductInStock  = "PRODUCT_IN_STOCK" // restock request for an available product

	// ==================== CART_ ====================
	CartEmpty        = "CART_EMPTY"
	CartLineNotFound = "CART_LINE_NOT_FOUND"

	// ==================== ORDER_ ====================
	OrderNotFound = "ORDER_NOT_FOUND"

	// ==================== PAYMENT_ ====================
	PaymentNotCompleted  = "PAYMENT_NOT_COMPLETED"
	PaymentAmountInvalid = "PAYMENT_AMOUNT_MISMATCH"
	PaymentAlreadyUsed   = "PAYMENT_ALREADY_USED"

	// ==================== CONTENT_ ====================
	PageNotFound = "PAGE_NOT_FOUND"

	// ==================== CONCIERGE_ ====================
	ConciergeDraftUnavailable = "CONCIERGE_DRAFT_UNAVAILABLE"
	VoiceSessionLimit         = "VOICE_SESSION_LIMIT"

	// ==================== UPLOAD_ ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== INTERNAL_ ====================
	InternalServerError  = "INTERNAL_SERVER_ERROR"
	InternalStorageError = "INTERNAL_STORAGE_ERROR"
	InternalExternalAPI  = "INTERNAL_EXTERNAL_API"
	InternalConfigError  = "INTERNAL_CONFIG_ERROR"
)
