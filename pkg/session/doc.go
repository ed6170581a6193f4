// Package session resolves who a client is from three sources of truth: an
// in-process cache on the request Scope, a signed payload cookie held by the
// client, and the per-device record in the active session store.
//
// # Model
//
// Each request gets a Scope. Resolving it moves the scope through
//
//	Unresolved -> Resolving -> Authenticated | Anonymous
//
// and both end states are final for the scope. Resolution order:
//
//  1. A cached identity on the scope is returned without I/O.
//  2. The cookie is read and verified. A missing cookie is anonymous; an
//     unverifiable, unparsable or expired one is deleted and anonymous.
//  3. When a user directory is configured, the cookie's user_id must match
//     the directory record for its username.
//  4. On success the identity is cached and last activity is written to
//     both the cookie and the device record. The expiry never moves.
//
// With device recovery enabled, the Manager also issues a signed device
// cookie (default name "device_session") carrying the client's
// browser-session id. A request without a session cookie is re-attached to
// the stored device record only when it presents that cookie and the record
// was written for the same browser session. All clients of one server share
// a device prefix, so the record alone never authenticates anyone. A record
// that is missing, expired, bound to another device prefix or written for
// another browser session leaves the scope anonymous.
//
// # Cookie payload
//
// The cookie (default name "auth_token") carries JSON
//
//	{"username":"alice","user_id":"u1",
//	 "expiry":"2024-03-08 10:20:30","last_activity":"2024-03-01 10:20:30"}
//
// signed with the cookie manager's HMAC, or AES-GCM encrypted when
// Config.EncryptCookie is set. Timestamps use local time.
//
// # Usage
//
//	mgr, err := session.New(cookies, store, dev,
//		session.WithLogger(log),
//		session.WithDirectory(users),
//	)
//	if err != nil {
//		return err
//	}
//
//	r := chi.NewRouter()
//	r.Use(mgr.Middleware)
//	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
//		s := session.MustScopeFromContext(r.Context())
//		inv, err := mgr.LoginUser(r.Context(), s, user)
//		if err == nil && inv.Required() {
//			http.Redirect(w, r, "/", http.StatusSeeOther)
//		}
//	})
//
// Login and Logout return an Invalidation instead of forcing a reload; the
// caller decides how to refresh the client. Logout is final for the scope:
// later Resolve calls return Anonymous even if the request carried a valid
// cookie.
//
// # Errors
//
// Resolve never returns errors. Failures are classified with the sentinel
// errors of this package and of activesession, logged, and counted in
// Metrics; the scope resolves anonymous.
package session
