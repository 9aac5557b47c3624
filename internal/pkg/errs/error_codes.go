/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007

	// ErrRouteNotFound indicates that no API route matches the request path.
	ErrRouteNotFound = 1008

	// ErrMethodNotAllowed indicates that the route exists but not for the request method.
	ErrMethodNotAllowed = 1009
)

// 2xxx: Device and Account Errors
const (
	// ErrDeviceIDRequired indicates that the request did not carry a device identifier.
	ErrDeviceIDRequired = 2001

	// ErrDeviceIDInvalid indicates that the device identifier has an unacceptable shape.
	ErrDeviceIDInvalid = 2002

	// ErrUserNameTooLong indicates that the display name exceeds the character limit.
	ErrUserNameTooLong = 2101

	// ErrProfileImageTooLarge indicates that the encoded profile image exceeds the byte limit.
	ErrProfileImageTooLarge = 2102

	// ErrProfileImageInvalid indicates that the profile image is neither an emoji nor a decodable image.
	ErrProfileImageInvalid = 2103

	// ErrUserNotFound indicates that no account is bound to the device identifier.
	ErrUserNotFound = 2201

	// ErrAvatarNotFound indicates that no mirrored avatar object exists for the account.
	ErrAvatarNotFound = 2202

	// ErrInvalidMonth indicates that a month parameter is outside 1-12.
	ErrInvalidMonth = 2301
)

// 3xxx: Identity and Session Errors
const (
	// ErrProvisionFailed indicates that the anonymous account could not be created.
	ErrProvisionFailed = 3001

	// ErrUnauthorized indicates that the presented access token does not match the device identifier.
	ErrUnauthorized = 3002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStorageFailed indicates that the object storage backend rejected an operation.
	ErrStorageFailed = 5001
)
