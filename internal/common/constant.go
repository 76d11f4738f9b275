// Package common contains shared constants and sentinel errors used across
// MedScan components.
package common

// AuthorizationHeaderName is the HTTP header used to carry the bearer token
// on outbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// MinPasswordLength is the shortest password accepted by every account flow.
const MinPasswordLength = 8
