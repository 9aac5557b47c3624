package account

import (
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"unicode/utf8"

	_ "golang.org/x/image/webp"
)

const (
	dataURLPrefix = "data:"

	// maxEmojiRunes bounds a non-image profile picture. Multi-codepoint emoji
	// (skin tones, ZWJ sequences) need more than one rune.
	maxEmojiRunes = 16
)

// AllowedImageTypes defines the set of permitted MIME types for data URL profile images.
var AllowedImageTypes = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// EncodedImage is a parsed base64 data URL.
type EncodedImage struct {
	MIMEType string
	Payload  string
}

// IsDataURL reports whether a profile image value is an encoded image rather than an emoji.
func IsDataURL(v string) bool {
	return strings.HasPrefix(v, dataURLPrefix)
}

// ParseDataURL splits a "data:<mime>;base64,<payload>" value.
func ParseDataURL(v string) (*EncodedImage, error) {
	rest, ok := strings.CutPrefix(v, dataURLPrefix)
	if !ok {
		return nil, fmt.Errorf("not a data url")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("data url has no payload")
	}

	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, fmt.Errorf("data url is not base64 encoded")
	}

	if _, allowed := AllowedImageTypes[mimeType]; !allowed {
		return nil, fmt.Errorf("unsupported image type %q", mimeType)
	}

	return &EncodedImage{MIMEType: mimeType, Payload: payload}, nil
}

// EncodeDataURL builds the data URL form of raw image bytes.
func EncodeDataURL(mimeType string, data []byte) string {
	return dataURLPrefix + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode returns the raw image bytes.
func (e *EncodedImage) Decode() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(e.Payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(e.Payload)
	}
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	return data, nil
}

// sniff checks that the payload starts with an image header matching the declared type.
// Only the header is decoded.
func (e *EncodedImage) sniff() error {
	dec := base64.NewDecoder(base64.StdEncoding, strings.NewReader(e.Payload))

	_, format, err := image.DecodeConfig(dec)
	if err != nil {
		return fmt.Errorf("unreadable image: %w", err)
	}

	if want := AllowedImageTypes[e.MIMEType]; format != want {
		return fmt.Errorf("declared %s but payload is %s", e.MIMEType, format)
	}

	return nil
}

// ValidateProfile applies the profile limits before any write:
// display name of at most MaxDisplayNameLength characters, and a profile image of at most
// MaxProfileImageBytes encoded bytes that is either a short emoji literal or a base64 data URL
// of a png, jpeg, gif or webp image. An empty string clears the field and is always valid.
func ValidateProfile(u ProfileUpdate) error {
	if u.DisplayName != nil {
		if n := utf8.RuneCountInString(*u.DisplayName); n > MaxDisplayNameLength {
			return &ValidationError{
				Field:     FieldUserName,
				Violation: ViolationTooLong,
				Detail:    fmt.Sprintf("%d characters, limit %d", n, MaxDisplayNameLength),
			}
		}
	}

	if u.Image == nil || *u.Image == "" {
		return nil
	}

	img := *u.Image
	if len(img) > MaxProfileImageBytes {
		return &ValidationError{
			Field:     FieldProfileImage,
			Violation: ViolationTooLarge,
			Detail:    fmt.Sprintf("%d bytes, limit %d", len(img), MaxProfileImageBytes),
		}
	}

	if !IsDataURL(img) {
		if !utf8.ValidString(img) || utf8.RuneCountInString(img) > maxEmojiRunes {
			return &ValidationError{Field: FieldProfileImage, Violation: ViolationInvalid, Detail: "not an emoji"}
		}
		return nil
	}

	enc, err := ParseDataURL(img)
	if err == nil {
		err = enc.sniff()
	}
	if err != nil {
		return &ValidationError{Field: FieldProfileImage, Violation: ViolationInvalid, Detail: err.Error()}
	}

	return nil
}
