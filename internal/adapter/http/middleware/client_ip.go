package middleware

import (
	"net/http"
	"regexp"
	"strings"
)

// awsTraceSelf matches the Self field of an X-Amzn-Trace-Id value,
// e.g. "Root=1-67891233-abcdef012345678912345678;Self=203.0.113.7"
var awsTraceSelf = regexp.MustCompile(`Root=[^;]+;Self=([^;,\s]+)`)

// ClientIP returns a best-effort client address for rate limiting. It is not
// an authentication signal. Headers are tried in trust order: the proxy
// forwarding chain first, then vendor edge headers, then the AWS trace id.
func ClientIP(h http.Header) (string, bool) {
	if forwarded := h.Get("X-Forwarded-For"); forwarded != "" {
		for _, token := range strings.Split(forwarded, ",") {
			if ip := strings.TrimSpace(token); ip != "" {
				return ip, true
			}
		}
	}

	for _, name := range []string{"X-Real-IP", "CF-Connecting-IP", "Fastly-Client-IP"} {
		if ip := strings.TrimSpace(h.Get(name)); ip != "" {
			return ip, true
		}
	}

	if trace := h.Get("X-Amzn-Trace-Id"); trace != "" {
		if m := awsTraceSelf.FindStringSubmatch(trace); m != nil {
			return m[1], true
		}
	}

	return "", false
}
