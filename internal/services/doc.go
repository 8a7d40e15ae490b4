// Package services contains the business logic layer between the HTTP
// handlers and the analysis engine.
//
// AnalysisService owns the upload-to-export lifecycle: saving uploaded
// spreadsheets, listing worksheets, detecting column roles, running
// analyses, reselecting Pareto dimensions, and rendering exports.
//
// SessionStore keeps upload sessions and finished analyses in memory
// with a TTL sweep, so abandoned uploads do not accumulate on disk.
//
// Services receive their dependencies through constructors and log via
// injected *slog.Logger instances.
package services
