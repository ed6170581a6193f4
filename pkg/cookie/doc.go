// Package cookie writes and reads the HTTP cookies that carry session state.
//
// A Manager is created with one or more secrets of at least 32 bytes and a
// set of default attributes (Path "/", HttpOnly, SameSite=Lax). Values can be
// stored three ways:
//
//   - Set / Get: plain values.
//   - SetSigned / GetSigned: base64(value) + "|" + HMAC-SHA256. The value is
//     readable by the client but any modification is rejected.
//   - SetEncrypted / GetEncrypted: AES-256-GCM with a random nonce prepended
//     to the ciphertext.
//
// The first secret is used for writing; all secrets are tried when reading,
// which allows rotating keys without logging everybody out.
//
// Delete clears a cookie at the default path and at any extra paths given,
// since browsers keep cookies set at different paths as separate entries.
//
//	man, err := cookie.New([]string{secret}, cookie.WithSecure(true))
//	if err != nil {
//		return err
//	}
//	_ = man.SetSigned(w, "auth_token", payload, cookie.WithExpires(expiry))
//	value, err := man.GetSigned(r, "auth_token")
//
// Failures are reported with sentinel errors (ErrCookieNotFound,
// ErrInvalidSignature, ErrDecryptionFailed, ErrInvalidFormat) for errors.Is.
package cookie
