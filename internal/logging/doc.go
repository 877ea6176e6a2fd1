// Package logging provides structured logging for vidparse.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// context propagation, so a batch run can be reconstructed after the fact:
// which link was started when, how it settled, and which control operations
// were rejected as warnings.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/logs", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("batch started", "pending", 3)
//
// # Context Propagation
//
//	taskLogger := logger.WithComponent("scheduler").WithTask(task.ID)
//	taskLogger.Info("task settled", "status", "success")
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"task settled","component":"scheduler","task_id":"...","status":"success"}
//
// # Testing
//
// Use [NopLogger] to discard all output, or [NewWriterLogger] to capture it:
//
//	var buf bytes.Buffer
//	logger := logging.NewWriterLogger(&buf, logging.LevelDebug)
package logging
