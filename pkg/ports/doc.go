// Package ports defines the driven-side interfaces of the sync core:
// the pub/sub transport, the workflow store, the remote orchestrator, and
// the terminal-status notifier. Adapters live under pkg/adapters; tests
// substitute fakes freely.
package ports
