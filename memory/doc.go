// Package memory provides structview.Memory implementations.
//
// Bytes serves a byte slice mapped at a base address, which is how memory
// dumps and test fixtures are read. Wazero adapts the linear memory of a
// wazero module instance, and LoadModule instantiates a core module to view
// its exported memory.
package memory
