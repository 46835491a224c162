package middleware

import (
	"regexp"

	"github.com/labstack/echo/v4"
)

// mobileKey is the context key under which DetectMobile stores its verdict.
const mobileKey = "is_mobile"

// mobilePattern matches the User-Agent substrings treated as mobile
// clients. The set mirrors what actual phone and tablet browsers send.
var mobilePattern = regexp.MustCompile(`(?i)Mobile|Android|iPhone|iPad|iPod|Windows Phone`)

// IsMobile reports whether a User-Agent string belongs to a mobile client.
// It is a pure function of the header value; the request-time verdict is
// never stored server-side.
func IsMobile(userAgent string) bool {
	return mobilePattern.MatchString(userAgent)
}

// DetectMobile classifies every inbound request as mobile or not and stores
// the verdict in the Echo context under "is_mobile". The poster asset
// handler uses it to substitute the resized mobile variant.
func DetectMobile() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(mobileKey, IsMobile(c.Request().UserAgent()))
			return next(c)
		}
	}
}

// MobileFromContext reads the verdict stored by DetectMobile. Requests that
// bypassed the middleware count as non-mobile.
func MobileFromContext(c echo.Context) bool {
	v, _ := c.Get(mobileKey).(bool)
	return v
}
