// Package bridge hosts algorithms written in embedded script runtimes.
//
// Each runtime (lua, js, yaegi) binds the same four host functions into the
// script: SetCash, Cash, AttachDebugger and Log. Scripts define Initialize and
// OnData. The runtime packages register themselves in init(); importing
// internal/bridge/all loads every runtime.
package bridge
