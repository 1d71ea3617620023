package inference

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/openai/openai-go/v3"
)

// Inferencer defines an interface for running multimodal model inference and verification.
type Inferencer interface {
	Name() string
	Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string, images ...Image) (string, error)
	Verify(ctx context.Context, result string) (bool, error)
}

// Image is a labelled image attachment. URL is either a data URI or an http(s) URL.
type Image struct {
	Name string
	URL  string
}

var ErrUnsupportedImage = errors.New("unsupported image reference")

// IsDataURI reports whether s is a base64 data URI.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// IsRemote reports whether s is an http(s) URL.
func IsRemote(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// SplitDataURI returns the media type and the base64 payload of a data URI without decoding it.
func SplitDataURI(uri string) (mediaType, payload string, err error) {
	if !IsDataURI(uri) {
		return "", "", fmt.Errorf("%w: not a data URI", ErrUnsupportedImage)
	}
	meta, data, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return "", "", fmt.Errorf("%w: missing data separator", ErrUnsupportedImage)
	}
	if !strings.HasSuffix(meta, ";base64") {
		return "", "", fmt.Errorf("%w: data URI is not base64 encoded", ErrUnsupportedImage)
	}
	mediaType = strings.TrimSpace(strings.TrimSuffix(meta, ";base64"))
	if mediaType == "" {
		mediaType = "image/png"
	}
	data = strings.TrimSpace(data)
	if data == "" {
		return "", "", fmt.Errorf("%w: empty data URI", ErrUnsupportedImage)
	}
	return mediaType, data, nil
}

// DecodeDataURI returns the media type and raw bytes of a base64 data URI.
func DecodeDataURI(uri string) (string, []byte, error) {
	mediaType, payload, err := SplitDataURI(uri)
	if err != nil {
		return "", nil, err
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return mediaType, data, nil
}

// EncodeDataURI builds a data URI from raw bytes.
func EncodeDataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Label is the text part that precedes each image so the model can refer to it by name.
func (i Image) Label() string {
	return "Image filename: " + i.Name
}

func verifyNonEmpty(result string) (bool, error) {
	if strings.TrimSpace(result) == "" {
		return false, errors.New("empty result")
	}
	return true, nil
}
