// Package catalog renders entities for the list and show commands.
//
// Entities come from a Source: either the in-memory repository or, in redis
// mode, the mirror the remote keeps in Redis.
package catalog
