// File: utils/constants.go
package utils

import "time"

// AuthCachePrefix is the prefix used for Redis admin session cache keys.
const AuthCachePrefix = "auth:admin:"

// AuthCacheTTL is the time-to-live for admin session cache entries.
const AuthCacheTTL = 10 * time.Minute

// AuthCookieName is the httponly cookie carrying the admin session token.
const AuthCookieName = "token"

// DefaultTimeout bounds a single repository call.
const DefaultTimeout = 5 * time.Second
