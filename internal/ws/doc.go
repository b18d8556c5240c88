// Package ws pushes live analysis reports to WebSocket clients.
//
// The Hub broadcasts the full report set on a fixed interval and once
// immediately on connect. Slow clients whose send buffer fills up are
// disconnected rather than allowed to stall the broadcast.
package ws
