// Package platform provides cross-platform filesystem helpers: permission
// management that degrades to a no-op on Windows and atomic file
// replacement used by every on-disk store.
package platform
