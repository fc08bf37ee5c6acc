//go:build !unix

package csvstore

// lockFile is a no-op where flock(2) is unavailable; the in-process ledger
// mutex still serializes writers of one server.
func lockFile(string) (func(), error) {
	return func() {}, nil
}
