// Package store persists calendar events behind a small driver-switched
// interface. The file driver needs no external services; sqlite and postgres
// share the same schema shape.
package store
