package config

// This file defines a Redis client constructor for the application.  Redis is
// used for rate limiting the ticket endpoints and for caching menu lookup
// responses.  The client parameters are loaded from environment variables.
// If connection fails during startup, the function returns nil and callers
// should degrade gracefully by disabling caching and rate limiting.

import (
    "context"
    "os"
    "strconv"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client using environment variables.
// Supported variables are:
//
//	REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//	  (take precedence over REDIS_ADDR when both are set)
//	REDIS_ADDR – host:port shorthand
//	REDIS_PASSWORD – optional password
//	REDIS_DB – database number (default 0)
//
// The returned client may be nil if a connection cannot be established.
func NewRedisClient() *redis.Client {
    host := os.Getenv("REDIS_HOST")
    port := os.Getenv("REDIS_PORT")
    addr := os.Getenv("REDIS_ADDR")
    if host != "" && port != "" {
        addr = host + ":" + port
    }
    if addr == "" {
        addr = "localhost:6379"
    }
    dbNum := 0
    if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
        if n, err := strconv.Atoi(dbStr); err == nil {
            dbNum = n
        }
    }
    client := redis.NewClient(&redis.Options{
        Addr:     addr,
        Password: os.Getenv("REDIS_PASSWORD"),
        DB:       dbNum,
    })
    // Ping the server with a short timeout.  Return nil on failure.
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        return nil
    }
    return client
}
