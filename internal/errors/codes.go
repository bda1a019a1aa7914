package errors

// Error codes returned in the "error" field of every error response.
// Format: CATEGORY_SPECIFIC_DETAIL. The frontend maps messages from these codes.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // no token
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthInvalidOldPassword = "AUTH_INVALID_OLD_PASSWORD"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthUserNotFound       = "AUTH_USER_NOT_FOUND" // token for a user that no longer exists
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthTooManyAttempts    = "AUTH_TOO_MANY_ATTEMPTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"

	// ==================== Stores (STORE_) ====================
	StoreNotFound      = "STORE_NOT_FOUND"
	StoreNameExists    = "STORE_NAME_EXISTS"
	StoreEmailExists   = "STORE_EMAIL_EXISTS"
	StoreOwnerInvalid  = "STORE_OWNER_INVALID"   // owner id is not a STORE_OWNER
	StoreOwnerHasStore = "STORE_OWNER_HAS_STORE" // owner already assigned to a store
	OwnerStoreNotFound = "OWNER_STORE_NOT_FOUND" // dashboard caller owns no store

	// ==================== Ratings (RATING_) ====================
	RatingNotFound      = "RATING_NOT_FOUND"
	RatingInvalidValue  = "RATING_INVALID_VALUE"
	RatingAlreadyExists = "RATING_ALREADY_EXISTS"

	// ==================== Rate limiting ====================
	RateLimitExceeded = "RATE_LIMIT_EXCEEDED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
