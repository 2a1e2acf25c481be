// Package service holds the gateway's business logic. Services are plain
// structs wired by the application; they log through the request logger
// found in the context.
package service

import "time"

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}
