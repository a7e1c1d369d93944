package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/patchc/compiler/internal/types"
)

// ManifestPort is the YAML shape of one port declaration. Lowering
// closures cannot be expressed in YAML, so a manifest only declares
// metadata; internal/blocks matches each entry by TypeName and attaches
// the hand-written Lower closure, then validates the two agree (see
// blocks.RegisterFromManifest). This mirrors the teacher's
// core/program.go YAMLCoreProgram/YAMLEntry split between declarative
// shape (read from disk) and behavior (compiled in).
type ManifestPort struct {
	ID            string `yaml:"id"`
	Payload       string `yaml:"payload"`
	Unit          string `yaml:"unit"`
	UnitMode      string `yaml:"unit_mode"`
	ExposedAsPort bool   `yaml:"exposed_as_port"`
	DefaultBlock  string `yaml:"default_block"`
}

// ManifestEntry is the YAML shape of one block-type declaration.
type ManifestEntry struct {
	TypeName   string         `yaml:"type_name"`
	Form       string         `yaml:"form"`
	Capability string         `yaml:"capability"`
	Inputs     []ManifestPort `yaml:"inputs"`
	Outputs    []ManifestPort `yaml:"outputs"`
}

// Manifest is the top-level YAML document shape, mirroring the
// teacher's YAMLRoot/ArrayConfig nesting.
type Manifest struct {
	Blocks []ManifestEntry `yaml:"blocks"`
}

// LoadManifestFile reads and parses a block-registry manifest from disk.
func LoadManifestFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("registry: parse manifest: %w", err)
	}
	return &m, nil
}

// ResolvePortType turns a ManifestPort's string-typed fields into a
// TypeTemplate producing a concrete (non-variable) CanonicalType. Ports
// that should carry a shared payload/unit variable across the block
// instance are not expressible in the manifest and must be declared in
// code instead (see internal/blocks).
func ResolvePortType(p ManifestPort) (TypeTemplate, error) {
	payloadKind, ok := types.ParsePayloadKind(p.Payload)
	if !ok {
		return nil, fmt.Errorf("registry: unknown payload %q for port %q", p.Payload, p.ID)
	}
	unit, ok := types.ParseUnit(p.Unit, p.UnitMode)
	if !ok {
		return nil, fmt.Errorf("registry: unknown unit %q for port %q", p.Unit, p.ID)
	}
	return func(_ *types.VarGen) types.CanonicalType {
		return types.CanonicalType{
			Payload: types.Payload{Kind: payloadKind},
			Unit:    unit,
			Extent:  types.ExtentOne(),
		}
	}, nil
}

// ParseCapability resolves a manifest capability string.
func ParseCapability(s string) (Capability, error) {
	switch types.CanonicalizeSpelling(s) {
	case "Pure", "":
		return CapabilityPure, nil
	case "State":
		return CapabilityState, nil
	case "Io":
		return CapabilityIO, nil
	case "Render":
		return CapabilityRender, nil
	default:
		return 0, fmt.Errorf("registry: unknown capability %q", s)
	}
}

// ParseForm resolves a manifest form string.
func ParseForm(s string) (BlockForm, error) {
	switch types.CanonicalizeSpelling(s) {
	case "Primitive", "":
		return FormPrimitive, nil
	case "Composite":
		return FormComposite, nil
	default:
		return 0, fmt.Errorf("registry: unknown form %q", s)
	}
}
