package util

// IsTrue interprets a query-parameter style boolean flag. Absence, "false"
// and "0" are false, every other value is true.
func IsTrue(v string) bool {
	return v != "" && v != "false" && v != "0"
}
