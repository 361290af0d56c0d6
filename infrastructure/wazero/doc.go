// Package wazero adapts a wazero-hosted WASM module to the Invoker port.
// Compiled native units (the C++ or Rust sources plus their generated
// adapter stubs, built for wasm32) are loaded here; each exported adapter
// takes a packed pointer/length to a call frame in guest memory and returns
// a packed pointer/length to a result frame.
package wazero
