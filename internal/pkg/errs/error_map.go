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
	ErrRouteNotFound:         {Code: ErrRouteNotFound, Message: "Route not found.", Status: http.StatusNotFound},
	ErrMethodNotAllowed:      {Code: ErrMethodNotAllowed, Message: "Method not allowed.", Status: http.StatusMethodNotAllowed},

	// 2xxx: Device and Account Errors
	ErrDeviceIDRequired:     {Code: ErrDeviceIDRequired, Message: "Device ID is required.", Status: http.StatusBadRequest},
	ErrDeviceIDInvalid:      {Code: ErrDeviceIDInvalid, Message: "Device ID is invalid.", Status: http.StatusBadRequest},
	ErrUserNameTooLong:      {Code: ErrUserNameTooLong, Message: "User name must be %d characters or less.", Status: http.StatusBadRequest},
	ErrProfileImageTooLarge: {Code: ErrProfileImageTooLarge, Message: "Profile image is too large.", Status: http.StatusBadRequest},
	ErrProfileImageInvalid:  {Code: ErrProfileImageInvalid, Message: "Profile image is not a supported image.", Status: http.StatusBadRequest},
	ErrUserNotFound:         {Code: ErrUserNotFound, Message: "User not found.", Status: http.StatusNotFound},
	ErrAvatarNotFound:       {Code: ErrAvatarNotFound, Message: "Avatar not found.", Status: http.StatusNotFound},
	ErrInvalidMonth:         {Code: ErrInvalidMonth, Message: "Month must be between 1 and 12.", Status: http.StatusBadRequest},

	// 3xxx: Identity and Session Errors
	ErrProvisionFailed: {Code: ErrProvisionFailed, Message: "Authentication failed.", Status: http.StatusInternalServerError},
	ErrUnauthorized:    {Code: ErrUnauthorized, Message: "Access token does not belong to this device.", Status: http.StatusUnauthorized},

	// 5xxx: Internal System Errors
	ErrUnknown:       {Code: ErrUnknown, Message: "Internal server error.", Status: http.StatusInternalServerError},
	ErrStorageFailed: {Code: ErrStorageFailed, Message: "Storage service error. Please try again later.", Status: http.StatusBadGateway},
}
