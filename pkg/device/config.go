package device

// Config holds device identity configuration.
type Config struct {
	// IDFile is where the device id is persisted.
	IDFile string `env:"DEVICE_ID_FILE" envDefault:"data/sessions/device_id.txt"`
}

// DefaultConfig returns the default device configuration.
func DefaultConfig() Config {
	return Config{IDFile: "data/sessions/device_id.txt"}
}
