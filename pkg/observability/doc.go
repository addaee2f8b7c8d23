// Package observability provides structured logging and Prometheus
// metrics for the comparison engine and its HTTP facade.
//
// Logging is logrus with a JSON formatter; metrics register on a
// private registry the serve command exposes at /metrics. Health is a
// plain liveness handler: the engine holds no external dependencies.
package observability
