// Package cookiestore implements the cookie-backed storage adapter over a
// fiber request context.
//
// Each Store instance lives for exactly one request: reads see the
// inbound Cookie header overlaid with any writes made during the request,
// writes become Set-Cookie headers on the response, and removal expires
// the cookie. An engine bound to a cookie store therefore synchronizes
// state that round-trips through the client on every request.
//
// Cookies offer no change feed, so Subscribe only reports writes made
// through the same store instance.
package cookiestore
