/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Marketplace Business Logic Errors
const (
	// ErrItemNotFound indicates that the requested item does not exist or was removed.
	ErrItemNotFound = 2101

	// ErrItemNotAvailable indicates that the item is not in a tradable state.
	ErrItemNotAvailable = 2102

	// ErrTradeRequestNotFound indicates that the trade request does not exist or is not visible to the caller.
	ErrTradeRequestNotFound = 2103

	// ErrTradeRequestClosed indicates that the trade request is no longer pending.
	ErrTradeRequestClosed = 2104

	// ErrSelfTrade indicates an attempt to request a trade on the caller's own item.
	ErrSelfTrade = 2105

	// ErrAlreadyRated indicates that the caller already rated this trade.
	ErrAlreadyRated = 2106

	// ErrRatingInvalid indicates a rating value outside the 1-5 range.
	ErrRatingInvalid = 2107

	// ErrDuplicateTradeRequest indicates the caller already has an open request on the item.
	ErrDuplicateTradeRequest = 2108
)

// 3xxx: Chat Business Logic Errors
const (
	// ErrChatAccessDenied covers both an unknown chat id and a non-participant
	// caller. The two cases are not distinguished, so a caller cannot probe for
	// the existence of chats it has no access to.
	ErrChatAccessDenied = 3101

	// ErrMessageContentInvalid indicates an empty or malformed message body.
	ErrMessageContentInvalid = 3102

	// ErrMessageContentTooLong indicates that the message content exceeded the maximum length.
	ErrMessageContentTooLong = 3103

	// ErrSelfChat indicates an attempt to open a chat with oneself.
	ErrSelfChat = 3104
)

// 4xxx: User, Session, and Security Errors
const (
	// ErrUnauthorized indicates a missing or invalid credential.
	ErrUnauthorized = 4001

	// ErrInvalidCredentials indicates an email/password mismatch at login.
	ErrInvalidCredentials = 4002

	// ErrUserAlreadyExists indicates a registration conflict on the email address.
	ErrUserAlreadyExists = 4003

	// ErrUserNotFound indicates that the referenced account does not exist.
	ErrUserNotFound = 4004

	// ErrInvalidName indicates a display name failing validation.
	ErrInvalidName = 4005

	// ErrInvalidEmail indicates a malformed email address.
	ErrInvalidEmail = 4006

	// ErrInvalidPassword indicates a password failing the length policy.
	ErrInvalidPassword = 4007

	// ErrResetCodeInvalid indicates a wrong or expired password reset code.
	ErrResetCodeInvalid = 4008

	// ErrForbidden indicates that the authenticated caller lacks permission for the operation.
	ErrForbidden = 4009

	// ErrAccountDisabled indicates that the account was deactivated by an administrator.
	ErrAccountDisabled = 4010
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates a failure talking to the S3 storage backend.
	ErrFileStorageFailed = 5001

	// ErrMailDeliveryFailed indicates a failure handing a message to the SMTP relay.
	ErrMailDeliveryFailed = 5002
)
