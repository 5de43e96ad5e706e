// Package common contains shared constants and sentinel errors used across
// gophsocial components.
package common

import "time"

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header value.
const BearerPrefix = "Bearer "

// DefaultTokenValidity is the lifetime of an issued access token.
const DefaultTokenValidity = 5 * time.Hour

// SuggestedUsersLimit caps the number of users returned as follow suggestions.
const SuggestedUsersLimit = 5
