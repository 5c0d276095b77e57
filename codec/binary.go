package codec

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Bytes encodings understood by EncodeBytes and DecodeBytes.
const (
	EncodingUTF8   = "utf8"
	EncodingBase64 = "base64"
	EncodingHex    = "hex"
)

var ErrInvalidUTF8 = errors.New("invalid utf-8")

// DecodeBytes converts text into bytes. Base64 accepts the standard and
// URL-safe alphabets with or without padding.
func DecodeBytes(s, encoding string) ([]byte, error) {
	switch encoding {
	case EncodingBase64:
		trimmed := strings.TrimRight(s, "=")
		if b, err := base64.RawStdEncoding.DecodeString(trimmed); err == nil {
			return b, nil
		}
		return base64.RawURLEncoding.DecodeString(trimmed)
	case EncodingHex:
		return hex.DecodeString(s)
	default:
		return []byte(s), nil
	}
}

// EncodeBytes converts bytes into text. utf8 fails on invalid sequences.
func EncodeBytes(b []byte, encoding string) (string, error) {
	switch encoding {
	case EncodingBase64:
		return base64.URLEncoding.EncodeToString(b), nil
	case EncodingHex:
		return hex.EncodeToString(b), nil
	default:
		if !utf8.Valid(b) {
			return "", ErrInvalidUTF8
		}
		return string(b), nil
	}
}

// ParseUUID accepts canonical, hyphen-less, urn:uuid: and braced forms.
func ParseUUID(s string) (uuid.UUID, error) { return uuid.Parse(strings.TrimSpace(s)) }

// UUIDFromBytes accepts exactly 16 raw bytes.
func UUIDFromBytes(b []byte) (uuid.UUID, error) { return uuid.FromBytes(b) }

// hierarchical schemes get "/" as their empty path
var pathSchemes = map[string]bool{"http": true, "https": true, "ws": true, "wss": true, "ftp": true}

var (
	ErrRelativeURL = errors.New("relative URL without a base")
	ErrEmptyHost   = errors.New("empty host")
)

// ParseURL parses an absolute URL and normalizes it: lower-case scheme and
// host, "/" as the empty path of hierarchical schemes.
func ParseURL(s string, hostRequired bool) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			return nil, ue.Err
		}
		return nil, err
	}
	if u.Scheme == "" {
		return nil, ErrRelativeURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if (hostRequired || pathSchemes[u.Scheme]) && u.Host == "" && u.Opaque == "" {
		return nil, ErrEmptyHost
	}
	if pathSchemes[u.Scheme] && u.Path == "" && u.Opaque == "" {
		u.Path = "/"
	}
	return u, nil
}
