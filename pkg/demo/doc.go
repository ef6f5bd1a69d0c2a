// Package demo contains small example devices built entirely on the
// public signal and device APIs. They run against the simulated backend,
// making them useful both as usage reference and as end-to-end exercise
// of the stack in tests.
package demo
