// Package hooks implements a scoped event registry. Subscribers attach
// to an explicit Registry instance that is passed to the import
// session; there is no process-global registration.
package hooks
