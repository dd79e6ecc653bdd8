//go:build linux

package device

import "golang.org/x/sys/unix"

// osRelease reports the kernel release string via uname(2). Best-effort:
// an error here is not worth failing a whole metadata envelope over.
func osRelease() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "unknown"
	}
	return charsToString(uts.Release[:])
}

func charsToString(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}
