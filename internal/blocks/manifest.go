package blocks

import (
	"fmt"
	"sort"

	"github.com/patchc/compiler/internal/registry"
)

// RegisterFromManifest validates m's declared block shapes (port ids,
// capability) against reg's already-registered catalog. A manifest
// cannot carry a Lower closure, so this package never synthesizes a
// new BlockDef from one — the manifest only documents, and is checked
// against, a hand-written registration (see Register), the same split
// the teacher draws between the declarative YAML ArrayConfig
// (core/program.go) and the compiled-in instruction behaviors
// (program/isa.go). A mismatch between the manifest and the registered
// definition is treated as a build-time configuration error.
func RegisterFromManifest(reg *registry.Registry, m *registry.Manifest) error {
	for _, entry := range m.Blocks {
		def, ok := reg.Lookup(entry.TypeName)
		if !ok {
			return fmt.Errorf("blocks: manifest declares unknown type %q", entry.TypeName)
		}

		cap, err := registry.ParseCapability(entry.Capability)
		if err != nil {
			return fmt.Errorf("blocks: %s: %w", entry.TypeName, err)
		}
		if cap != def.Capability {
			return fmt.Errorf("blocks: %s: manifest capability %d does not match registered capability %d", entry.TypeName, cap, def.Capability)
		}

		if err := checkPortIDs(entry.TypeName, "input", entry.Inputs, inputIDs(def.Inputs)); err != nil {
			return err
		}
		if err := checkPortIDs(entry.TypeName, "output", entry.Outputs, outputIDs(def.Outputs)); err != nil {
			return err
		}
	}
	return nil
}

func inputIDs(ports []registry.InputPortDef) []string {
	ids := make([]string, len(ports))
	for i, p := range ports {
		ids[i] = p.ID
	}
	return ids
}

func outputIDs(ports []registry.OutputPortDef) []string {
	ids := make([]string, len(ports))
	for i, p := range ports {
		ids[i] = p.ID
	}
	return ids
}

func checkPortIDs(typeName, kind string, manifestPorts []registry.ManifestPort, registeredIDs []string) error {
	manifestIDs := make([]string, len(manifestPorts))
	for i, p := range manifestPorts {
		manifestIDs[i] = p.ID
	}
	sort.Strings(manifestIDs)
	want := append([]string(nil), registeredIDs...)
	sort.Strings(want)

	if len(manifestIDs) != len(want) {
		return fmt.Errorf("blocks: %s: manifest declares %d %s port(s), registered type has %d", typeName, len(manifestIDs), kind, len(want))
	}
	for i := range manifestIDs {
		if manifestIDs[i] != want[i] {
			return fmt.Errorf("blocks: %s: manifest %s ports %v do not match registered ports %v", typeName, kind, manifestIDs, want)
		}
	}
	return nil
}
