package fingerprint

import (
	"bufio"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// RuntimeOS reports GOOS/GOARCH. It always succeeds.
func RuntimeOS() Provider {
	return ProviderFunc(func() (string, error) {
		return runtime.GOOS + "/" + runtime.GOARCH, nil
	})
}

// OSRelease reads PRETTY_NAME from /etc/os-release.
func OSRelease() Provider {
	return osReleaseFrom("/etc/os-release")
}

func osReleaseFrom(path string) Provider {
	return ProviderFunc(func() (string, error) {
		f, err := os.Open(path)
		if err != nil {
			return "", ErrUnavailable
		}
		defer func() { _ = f.Close() }()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			name, value, ok := strings.Cut(scanner.Text(), "=")
			if ok && name == "PRETTY_NAME" {
				return runtime.GOOS + "/" + strings.Trim(value, `"`) + "/" + runtime.GOARCH, nil
			}
		}
		return "", ErrUnavailable
	})
}

// Hostname reports the kernel host name.
func Hostname() Provider {
	return ProviderFunc(func() (string, error) {
		name, err := os.Hostname()
		if err != nil || name == "" {
			return "", ErrUnavailable
		}
		return name, nil
	})
}

// HostnameWithAddr reports the host name plus the first non-loopback
// interface address. Interface addresses are read locally, no DNS lookups.
func HostnameWithAddr() Provider {
	return ProviderFunc(func() (string, error) {
		name, err := os.Hostname()
		if err != nil || name == "" {
			return "", ErrUnavailable
		}
		addrs, err := net.InterfaceAddrs()
		if err != nil {
			return "", ErrUnavailable
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok || ipnet.IP.IsLoopback() || ipnet.IP.IsLinkLocalUnicast() {
				continue
			}
			return name + ipnet.IP.String(), nil
		}
		return "", ErrUnavailable
	})
}

// CPUModel reads the first "model name" entry of /proc/cpuinfo.
func CPUModel() Provider {
	return cpuModelFrom("/proc/cpuinfo")
}

func cpuModelFrom(path string) Provider {
	return ProviderFunc(func() (string, error) {
		f, err := os.Open(path)
		if err != nil {
			return "", ErrUnavailable
		}
		defer func() { _ = f.Close() }()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			key, value, ok := strings.Cut(scanner.Text(), ":")
			if ok && strings.TrimSpace(key) == "model name" {
				if v := strings.TrimSpace(value); v != "" {
					return v, nil
				}
			}
		}
		return "", ErrUnavailable
	})
}

// CPUCount reports the number of logical CPUs.
func CPUCount() Provider {
	return ProviderFunc(func() (string, error) {
		return strconv.Itoa(runtime.NumCPU()), nil
	})
}
