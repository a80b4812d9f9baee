// Package storage provides durable key-value backends for persisted store
// snapshots and the auth token.
//
// Backends:
//   - MemoryStorage: process-local, the default for tests
//   - FileStorage: one file per key in a directory, with fsnotify-based
//     change watching so several processes observe each other's writes
//   - SQLStorage: any database/sql driver; SQLite (modernc.org/sqlite) is
//     registered by this package
//   - S3Storage: objects in an S3 bucket under a key prefix
//
// All backends return (nil, nil) from Get when a key does not exist.
package storage
