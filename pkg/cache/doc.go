// Package cache is a small typed TTL cache with an in-process and a Redis
// backend.
//
// GetOrLoad collapses concurrent misses for the same key into one loader
// call, which keeps the user lookup on hot timeline pages from stampeding
// the database.
package cache
