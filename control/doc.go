// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime control surface for hiothread: structured logging, lifecycle
// metrics, debug probes and attribute configuration loading.
//
// Provides concurrent-safe state handling primitives including:
//   - A replaceable package logger (logrus)
//   - Thread lifecycle counters on a private Prometheus registry
//   - State export and probe registration
//   - Attribute defaults from file and environment (viper)
package control
