package session

import "time"

// DefaultSalt is mixed into session ids. Changing it changes every
// session id at once.
const DefaultSalt = "sessionkit_login_v2"

// Config holds session configuration.
type Config struct {
	// CookieName is the name of the session cookie.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"auth_token"`

	// TTL is the fixed lifetime of a login. Activity does not extend it.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	Salt string `env:"SESSION_SALT" envDefault:"sessionkit_login_v2"`

	// DeviceRecovery re-attaches a device to its last session from the
	// active session store when the request carries no cookie.
	DeviceRecovery bool `env:"SESSION_DEVICE_RECOVERY" envDefault:"false"`

	// DeviceCookieName names the signed cookie that carries the client's
	// browser-session id while device recovery is enabled. Recovery only
	// considers the record written for that id.
	DeviceCookieName string `env:"SESSION_DEVICE_COOKIE_NAME" envDefault:"device_session"`

	// EncryptCookie stores the payload AES-GCM encrypted instead of signed.
	EncryptCookie bool `env:"SESSION_ENCRYPT_COOKIE" envDefault:"false"`

	SecureCookies bool `env:"SESSION_SECURE_COOKIES" envDefault:"false"`
}

// DefaultConfig returns default session configuration.
func DefaultConfig() Config {
	return Config{
		CookieName:       "auth_token",
		TTL:              7 * 24 * time.Hour,
		Salt:             DefaultSalt,
		DeviceCookieName: "device_session",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CookieName == "" {
		c.CookieName = d.CookieName
	}
	if c.TTL <= 0 {
		c.TTL = d.TTL
	}
	if c.Salt == "" {
		c.Salt = d.Salt
	}
	if c.DeviceCookieName == "" {
		c.DeviceCookieName = d.DeviceCookieName
	}
	return c
}
