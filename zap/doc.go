// Package zap provides adapters and helpers around zap-based logging.
//
// It bridges this module's log abstraction to zap while preserving structured
// fields and compatibility with existing middleware/context plumbing.
package zap
