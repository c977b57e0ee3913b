// Package platform wraps filesystem calls whose behavior differs between
// operating systems.
package platform
