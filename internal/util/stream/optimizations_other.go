//go:build !linux
// +build !linux

package stream

// No portable equivalents of the posix_fadvise hints outside linux.
var ReadOptimizations []FileOptimization
var WriteOptimizations []FileOptimization
