//go:build linux || darwin || freebsd

package fingerprint

import (
	"strconv"

	"golang.org/x/sys/unix"
)

// Uname reports sysname, release and machine from uname(2).
func Uname() Provider {
	return ProviderFunc(func() (string, error) {
		var u unix.Utsname
		if err := unix.Uname(&u); err != nil {
			return "", ErrUnavailable
		}
		return unix.ByteSliceToString(u.Sysname[:]) +
			unix.ByteSliceToString(u.Release[:]) +
			unix.ByteSliceToString(u.Machine[:]), nil
	})
}

// DiskCapacity reports the total size in bytes of the filesystem at path.
func DiskCapacity(path string) Provider {
	return ProviderFunc(func() (string, error) {
		var st unix.Statfs_t
		if err := unix.Statfs(path, &st); err != nil {
			return "", ErrUnavailable
		}
		total := uint64(st.Blocks) * uint64(st.Bsize)
		if total == 0 {
			return "", ErrUnavailable
		}
		return strconv.FormatUint(total, 10), nil
	})
}
