// Package identity defines the contract with the identity service that owns
// user accounts, plus two implementations of it.
//
// The session core never sees raw credentials. Callers hash the credential
// with CredentialHash and pass only the username and the hash:
//
//	res, err := svc.Verify(ctx, username, identity.CredentialHash(password))
//	if err != nil || !res.Success {
//		// login failure
//	}
//
// Client talks to a remote service over HTTP with a bounded timeout;
// timeouts and transport errors surface as ErrUnavailable. FileDirectory
// keeps users in a local JSON file (bcrypt over the credential hash) and is
// used when no remote service is configured.
package identity
