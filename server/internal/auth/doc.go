// Package auth provides authentication middleware for pharmames-server.
//
// APIKey(mode, header, key) returns a gin middleware that accepts the API key
// either in the named header or as "Authorization: Bearer <key>".
//
// When mode != "apikey" or key == "", all requests pass through (useful for
// local development with auth disabled). When the key is incorrect or absent
// the middleware aborts with 401 and the standard error envelope.
package auth
