package memory

import (
	"context"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/wippyai/structview"
	"github.com/wippyai/structview/errors"
)

// DefaultMemoryExport is the export name modules conventionally use.
const DefaultMemoryExport = "memory"

// Module is an instantiated WASM module whose linear memory is viewed.
type Module struct {
	rt  wazero.Runtime
	mem structview.Memory
}

// LoadModule instantiates the core module at path and exposes the memory
// exported as export. WASI preview1 imports are satisfied; start functions
// are not run, so the memory holds the module's initial data segments.
func LoadModule(ctx context.Context, path, export string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseMemory, errors.KindNotFound, err, "read "+path)
	}
	return InstantiateModule(ctx, data, export)
}

// InstantiateModule is LoadModule for an in-memory binary.
func InstantiateModule(ctx context.Context, binary []byte, export string) (*Module, error) {
	if export == "" {
		export = DefaultMemoryExport
	}

	rt := wazero.NewRuntime(ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseMemory, errors.KindInvalidData, err, "instantiate wasi")
	}

	compiled, err := rt.CompileModule(ctx, binary)
	if err != nil {
		rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseMemory, errors.KindInvalidData, err, "compile module")
	}
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithStartFunctions())
	if err != nil {
		rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseMemory, errors.KindInvalidData, err, "instantiate module")
	}

	raw := mod.ExportedMemory(export)
	if raw == nil {
		rt.Close(ctx)
		return nil, errors.NotFound(errors.PhaseMemory, "memory export", export)
	}
	return &Module{rt: rt, mem: WrapWazero(raw)}, nil
}

// Memory returns the module's exported memory.
func (m *Module) Memory() structview.Memory {
	return m.mem
}

// Close releases the runtime.
func (m *Module) Close(ctx context.Context) error {
	return m.rt.Close(ctx)
}
