// Package clientip extracts the client address of a request.
//
// Only the headers passed to FromRequest or Middleware are trusted; a
// deployment without a reverse proxy should pass none so a client cannot
// spoof its address. The address keys login throttling in modules/auth.
package clientip
