// Package redis opens go-redis clients with pool defaults and a startup retry loop.
//
// The client backs the optional Redis session store and the user cache. Pair
// Healthcheck with the readiness endpoint and Shutdown with the app's
// shutdown hooks.
package redis
