//go:build !linux && !darwin

package crypto

// lockMemory/unlockMemory are no-ops on platforms without an mlock
// equivalent wired up here; LockedBuffer still zeroes on Release.
func lockMemory(b []byte) error   { return nil }
func unlockMemory(b []byte) error { return nil }
