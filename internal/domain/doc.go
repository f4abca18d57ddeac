// Package domain defines the core types, store interfaces, events, and
// sentinel errors shared by all components. It has no dependencies on any
// concrete storage or transport.
package domain
