package clientip

// Config lists the proxy headers trusted to carry the client address.
type Config struct {
	TrustedHeaders []string `env:"CLIENT_IP_HEADERS" envSeparator:"," envDefault:"X-Forwarded-For,X-Real-IP"`
}
