// Package session holds the raffle's single session state and the controller
// that owns it.
//
// State transitions are computed by Reduce, a pure function of the current
// State and an Event. The Controller serializes commands from the front ends
// and progress reports from the draw engine through Reduce, runs at most one
// engine goroutine at a time and notifies listeners of every transition.
//
// Engine events carry the DrawID of the draw that produced them; once a draw
// has been reset or superseded its events no longer match and are dropped.
package session
