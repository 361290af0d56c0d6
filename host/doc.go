// Package host is the runtime side of the bridge. A Caller owns the
// per-call marshalling contract: it validates arguments against a declared
// signature, packs them into a call frame, hands the frame to an Invoker
// exactly once, and unpacks the result or the out-of-band error slot.
//
// Validation failures are reported before the native side is ever invoked.
package host
