package redis

import "fmt"

// Key prefix for all persisted credential data
const keyPrefix = "sessionlink"

// lastEmailKey returns the Redis key for the last-used email entry
func lastEmailKey() string {
	return fmt.Sprintf("%s:last_email", keyPrefix)
}

// hostTokenKey returns the Redis key for a host's long-lived login token
func hostTokenKey(host string) string {
	return fmt.Sprintf("%s:host_token:%s", keyPrefix, host)
}
