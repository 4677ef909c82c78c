package utils

import "time"

// NowMillis returns the current time as epoch milliseconds, the format user
// records use for createdAt.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
