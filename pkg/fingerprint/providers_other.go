//go:build !(linux || darwin || freebsd)

package fingerprint

func Uname() Provider {
	return ProviderFunc(func() (string, error) { return "", ErrUnavailable })
}

func DiskCapacity(string) Provider {
	return ProviderFunc(func() (string, error) { return "", ErrUnavailable })
}
