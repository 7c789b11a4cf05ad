/*
Package log provides fcdb's structured logging, wrapping zerolog with
a global logger, configurable level/format/output, and a small set of
context-logger helpers for the fields fcdb code actually attaches:
component, actor, txn_id, and pack_id.

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true, Output: os.Stdout})
	log.Info("cas opened")

	casLog := log.WithComponent("cas")
	casLog.Warn().Uint32("pack_id", 7).Msg("quarantined corrupt CIR record")

# Levels

Debug is for development tracing; Info is the default production
level; Warn flags a recovered anomaly (a quarantined record, a retried
acquire); Error is an operation that failed outright; Fatal exits the
process and should only wrap unrecoverable startup failures (a corrupt
data directory, a config that fails validation).

Never log a capability's Proof field or a raw node payload — log the
digest or Rid instead.
*/
package log
