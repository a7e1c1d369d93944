package graph

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PatchFile is the on-disk YAML shape of a Patch, mirroring the
// teacher's YAMLRoot/ArrayConfig nesting (core/program.go) so patches
// can be authored and round-tripped outside an editor process.
type PatchFile struct {
	Patch struct {
		Blocks []YAMLBlock `yaml:"blocks"`
		Edges  []YAMLEdge  `yaml:"edges"`
	} `yaml:"patch"`
}

// YAMLBlock is one block entry in a PatchFile.
type YAMLBlock struct {
	ID          string                 `yaml:"id"`
	Type        string                 `yaml:"type"`
	Params      map[string]interface{} `yaml:"params"`
	DisplayName string                 `yaml:"display_name"`
	Role        string                 `yaml:"role"`
	InputPorts  []string               `yaml:"input_ports"`
	OutputPorts []string               `yaml:"output_ports"`
}

// YAMLEdge is one edge entry in a PatchFile.
type YAMLEdge struct {
	ID         string `yaml:"id"`
	FromBlock  string `yaml:"from_block"`
	FromPort   string `yaml:"from_port"`
	ToBlock    string `yaml:"to_block"`
	ToPort     string `yaml:"to_port"`
	Enabled    *bool  `yaml:"enabled"`
	SortKey    string `yaml:"sort_key"`
	Role       string `yaml:"role"`
}

// LoadPatchFile reads and parses a Patch from a YAML file on disk.
func LoadPatchFile(path string) (Patch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Patch{}, fmt.Errorf("graph: read patch file: %w", err)
	}
	return ParsePatchFile(data)
}

// ParsePatchFile parses a Patch from YAML bytes already in memory.
func ParsePatchFile(data []byte) (Patch, error) {
	var file PatchFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Patch{}, fmt.Errorf("graph: parse patch file: %w", err)
	}

	p := Patch{Blocks: map[BlockID]Block{}}
	for _, yb := range file.Patch.Blocks {
		p.Blocks[BlockID(yb.ID)] = Block{
			ID:          BlockID(yb.ID),
			Type:        yb.Type,
			Params:      yb.Params,
			DisplayName: yb.DisplayName,
			Role:        yb.Role,
			InputPorts:  yb.InputPorts,
			OutputPorts: yb.OutputPorts,
		}
	}
	for _, ye := range file.Patch.Edges {
		enabled := true
		if ye.Enabled != nil {
			enabled = *ye.Enabled
		}
		p.Edges = append(p.Edges, Edge{
			ID:      ye.ID,
			From:    Endpoint{BlockID: BlockID(ye.FromBlock), PortID: ye.FromPort},
			To:      Endpoint{BlockID: BlockID(ye.ToBlock), PortID: ye.ToPort},
			Enabled: enabled,
			SortKey: ye.SortKey,
			Role:    ye.Role,
		})
	}
	return p, nil
}
