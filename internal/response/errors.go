package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Draft sessions ────────────────────────────────────────────────
	ErrDraftNotFound    ErrCode = "DRAFT_NOT_FOUND"
	ErrInvalidState     ErrCode = "INVALID_STATE"
	ErrOperationInFlight ErrCode = "OPERATION_IN_FLIGHT"
	ErrIndexOutOfRange  ErrCode = "INDEX_OUT_OF_RANGE"

	// ─── Intake ────────────────────────────────────────────────────────
	ErrTooManyDocuments ErrCode = "TOO_MANY_DOCUMENTS"
	ErrTooManyImages    ErrCode = "TOO_MANY_IMAGES"
	ErrNoSourceFiles    ErrCode = "NO_SOURCE_FILES"
	ErrFileTooLarge     ErrCode = "FILE_TOO_LARGE"
	ErrFileRequired     ErrCode = "FILE_REQUIRED"

	// ─── External calls ────────────────────────────────────────────────
	ErrGenerationFailed ErrCode = "GENERATION_FAILED"
	ErrPublishFailed    ErrCode = "PUBLISH_FAILED"

	// ─── Publishing gate ───────────────────────────────────────────────
	ErrAnonymousConfirmationRequired ErrCode = "ANONYMOUS_CONFIRMATION_REQUIRED"

	// ─── Auth ──────────────────────────────────────────────────────────
	ErrOAuthExchangeFailed ErrCode = "OAUTH_EXCHANGE_FAILED"
	ErrInvalidOAuthState   ErrCode = "INVALID_OAUTH_STATE"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Draft sessions ────────────────────────────────────────────────
	case ErrDraftNotFound:
		return "Draft session not found or expired."
	case ErrInvalidState:
		return "This action is not available in the current step."
	case ErrOperationInFlight:
		return "Another request is still running. Please wait for it to finish."
	case ErrIndexOutOfRange:
		return "The referenced question or option does not exist."

	// ─── Intake ────────────────────────────────────────────────────────
	case ErrTooManyDocuments:
		return "Only 1 PDF allowed."
	case ErrTooManyImages:
		return "Maximum 10 images allowed."
	case ErrNoSourceFiles:
		return "Add at least one file before generating."
	case ErrFileTooLarge:
		return "File size exceeds the limit."
	case ErrFileRequired:
		return "File upload is required."

	// ─── External calls ────────────────────────────────────────────────
	case ErrGenerationFailed:
		return "AI Generation Failed"
	case ErrPublishFailed:
		return "Publishing failed. The draft is untouched; try again."

	// ─── Publishing gate ───────────────────────────────────────────────
	case ErrAnonymousConfirmationRequired:
		return "You are not signed in. Confirm that the quiz will be created by the service account."

	// ─── Auth ──────────────────────────────────────────────────────────
	case ErrOAuthExchangeFailed:
		return "Sign-in with Google failed. Please try again."
	case ErrInvalidOAuthState:
		return "Sign-in state mismatch. Please restart the sign-in."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
