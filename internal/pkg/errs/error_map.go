/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Marketplace Business Logic Errors
	ErrItemNotFound:         {Code: ErrItemNotFound, Message: "Item not found.", Status: http.StatusNotFound},
	ErrItemNotAvailable:     {Code: ErrItemNotAvailable, Message: "This item is no longer available.", Status: http.StatusConflict},
	ErrTradeRequestNotFound: {Code: ErrTradeRequestNotFound, Message: "Trade request not found.", Status: http.StatusNotFound},
	ErrTradeRequestClosed:   {Code: ErrTradeRequestClosed, Message: "This trade request has already been resolved.", Status: http.StatusConflict},
	ErrSelfTrade:            {Code: ErrSelfTrade, Message: "You cannot request a trade on your own item.", Status: http.StatusBadRequest},
	ErrAlreadyRated:         {Code: ErrAlreadyRated, Message: "You have already rated this trade.", Status: http.StatusConflict},
	ErrRatingInvalid:         {Code: ErrRatingInvalid, Message: "Rating must be between 1 and 5.", Status: http.StatusBadRequest},
	ErrDuplicateTradeRequest: {Code: ErrDuplicateTradeRequest, Message: "You already have an open request for this item.", Status: http.StatusConflict},

	// 3xxx: Chat Business Logic Errors
	ErrChatAccessDenied:      {Code: ErrChatAccessDenied, Message: "Chat not found or access denied.", Status: http.StatusNotFound},
	ErrMessageContentInvalid: {Code: ErrMessageContentInvalid, Message: "Message content cannot be empty.", Status: http.StatusBadRequest},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long.", Status: http.StatusBadRequest},
	ErrSelfChat:              {Code: ErrSelfChat, Message: "You cannot start a chat with yourself.", Status: http.StatusBadRequest},

	// 4xxx: User, Session, and Security Errors
	ErrUnauthorized:       {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Incorrect email or password.", Status: http.StatusUnauthorized},
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Message: "An account with this email already exists.", Status: http.StatusConflict},
	ErrUserNotFound:       {Code: ErrUserNotFound, Message: "Account not found.", Status: http.StatusNotFound},
	ErrInvalidName:        {Code: ErrInvalidName, Message: "Invalid display name.", Status: http.StatusBadRequest},
	ErrInvalidEmail:       {Code: ErrInvalidEmail, Message: "Invalid email address.", Status: http.StatusBadRequest},
	ErrInvalidPassword:    {Code: ErrInvalidPassword, Message: "Password must be between 6 and 50 characters.", Status: http.StatusBadRequest},
	ErrResetCodeInvalid:   {Code: ErrResetCodeInvalid, Message: "Reset code is invalid or has expired.", Status: http.StatusBadRequest},
	ErrForbidden:          {Code: ErrForbidden, Message: "You do not have permission to do that.", Status: http.StatusForbidden},
	ErrAccountDisabled:    {Code: ErrAccountDisabled, Message: "This account has been deactivated.", Status: http.StatusForbidden},

	// 5xxx: Internal System Errors
	ErrUnknown:            {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrFileStorageFailed:  {Code: ErrFileStorageFailed, Message: "File upload failed. Please try again.", Status: http.StatusInternalServerError},
	ErrMailDeliveryFailed: {Code: ErrMailDeliveryFailed, Message: "Could not send the email. Please try again later.", Status: http.StatusInternalServerError},
}
