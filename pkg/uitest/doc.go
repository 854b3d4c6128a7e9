// Package uitest provides test doubles for driving a Rivet runtime without
// a native host. RecordingBridge captures every bridge call in order and
// supports scripted failures; Harness wires one to a quiet runtime for
// synchronous test flows.
package uitest
