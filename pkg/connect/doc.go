// Package connect implements parallel connection aggregation with
// structured partial-failure reporting.
//
// WaitForConnection fans a set of named connect operations out
// concurrently and fans their results back into a single outcome: total
// success, one fatal unexpected error, or one *NotConnectedError that
// enumerates exactly the failing branches. Because a branch error may
// itself be a *NotConnectedError from a nested aggregation, reports
// compose recursively: a child device's failure nests, indented, under
// its branch name in the parent's report.
//
// Failures are kept as structured data (branch name plus error value);
// the indented text report is derived by Lines()/Error(), never stored.
package connect
