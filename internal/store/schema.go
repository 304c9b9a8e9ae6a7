package store

import "fmt"

// Redis key pattern helpers
//
// Keys and channels are namespaced so several teams can share one Redis.
//
// Key pattern: prdflow:{namespace}:run:{run_id}
// Channel pattern: prdflow:{namespace}:run_events

// RunKey returns the Redis key for a run.
func RunKey(namespace, runID string) string {
	return fmt.Sprintf("prdflow:%s:run:%s", namespace, runID)
}

// RunKeyPrefix returns the key prefix shared by every run in namespace.
func RunKeyPrefix(namespace string) string {
	return fmt.Sprintf("prdflow:%s:run:", namespace)
}

// RunEventsChannel returns the Pub/Sub channel that carries finished runs.
func RunEventsChannel(namespace string) string {
	return fmt.Sprintf("prdflow:%s:run_events", namespace)
}
