package validation

import (
	"net/url"
	"strings"

	"github.com/nijaru/yt-summary/errors"
	pkgerrors "github.com/pkg/errors"
)

const (
	MsgEmptyURL   = "请先粘贴视频链接！"
	MsgInvalidURL = "请输入有效的视频链接（以http/https开头）"
)

// ValidateURL checks that rawURL is an absolute http(s) link with a host. It
// does not contact the remote side.
func ValidateURL(rawURL string) error {
	const op = "validation.ValidateURL"

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return errors.InvalidInput(op, nil, MsgEmptyURL)
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return errors.InvalidInput(op, pkgerrors.Errorf("unsupported scheme in %q", rawURL), MsgInvalidURL)
	}

	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return errors.InvalidInput(op, pkgerrors.Wrap(err, "parse url"), MsgInvalidURL)
	}

	if parsedURL.Host == "" || parsedURL.Hostname() == "" {
		return errors.InvalidInput(op, pkgerrors.New("url must have a host"), MsgInvalidURL)
	}

	return nil
}

// ValidateAPIKey rejects keys that could not be sent as a header value.
func ValidateAPIKey(key string) error {
	if strings.ContainsAny(key, "\r\n") {
		return errors.InvalidInput("validation.ValidateAPIKey", nil, "API Key 格式无效")
	}
	return nil
}
