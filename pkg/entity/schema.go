package entity

import "fmt"

// Redis key pattern helpers
//
// Mirrored entities and commit events are namespaced so several errand
// processes can share one Redis server.
//
// Key pattern: errand:{namespace}:entity:{id}
// Channel pattern: errand:{namespace}:commit_events

// EntityKey returns the Redis key for a mirrored entity hash.
// Pattern: errand:{namespace}:entity:{id}
func EntityKey(namespace, id string) string {
	return fmt.Sprintf("errand:%s:entity:%s", namespace, id)
}

// EntityKeyPattern returns the SCAN pattern matching every mirrored entity in a namespace.
func EntityKeyPattern(namespace string) string {
	return fmt.Sprintf("errand:%s:entity:*", namespace)
}

// CommitEventsChannel returns the Pub/Sub channel carrying commit events.
// Pattern: errand:{namespace}:commit_events
func CommitEventsChannel(namespace string) string {
	return fmt.Sprintf("errand:%s:commit_events", namespace)
}
