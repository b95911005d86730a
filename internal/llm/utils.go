package llm

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/joseph-ayodele/cardscan/internal/common"
)

// DecodeImage accepts raw base64 or a data: URL. The MIME type comes from the
// data URL prefix when present, otherwise it is sniffed from the bytes.
func DecodeImage(s string) (Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Image{}, fmt.Errorf("%w: image is empty", common.ErrInvalidInput)
	}
	var hint string
	if strings.HasPrefix(s, "data:") {
		idx := strings.IndexByte(s, ',')
		if idx < 0 {
			return Image{}, fmt.Errorf("%w: malformed data url", common.ErrInvalidInput)
		}
		meta := s[len("data:"):idx]
		hint, _, _ = strings.Cut(meta, ";")
		s = s[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		var err2 error
		if data, err2 = base64.URLEncoding.DecodeString(s); err2 != nil {
			return Image{}, fmt.Errorf("%w: bad base64: %v", common.ErrInvalidInput, err)
		}
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: image is empty", common.ErrInvalidInput)
	}
	return Image{Data: data, MIMEType: pickMIME(hint, data)}, nil
}

// NewImage wraps raw bytes read from disk, sniffing the MIME type.
func NewImage(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: image is empty", common.ErrInvalidInput)
	}
	return Image{Data: data, MIMEType: pickMIME("", data)}, nil
}

func pickMIME(hint string, data []byte) string {
	if h := strings.TrimSpace(hint); h != "" {
		return h
	}
	return http.DetectContentType(data)
}

// DataURL re-encodes an image for providers that take inline URLs.
func (img Image) DataURL() string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// IsSupportedImageMIME reports whether vision endpoints accept the type.
func IsSupportedImageMIME(m string) bool {
	switch strings.ToLower(strings.TrimSpace(m)) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	}
	return false
}
