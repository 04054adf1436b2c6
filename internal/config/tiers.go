package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ToolInfo describes a tool's tier and service.
type ToolInfo struct {
	Tier    string
	Service string
}

// tierFile mirrors configs/tool_tiers.yaml.
type tierFile struct {
	Services map[string]ServiceTiers `yaml:"services"`
}

// ServiceTiers lists tools by tier within a service.
type ServiceTiers struct {
	Core     []string `yaml:"core"`
	Extended []string `yaml:"extended"`
	Complete []string `yaml:"complete"`
}

// LoadTiers reads the tool tiers YAML file and returns tool name -> ToolInfo.
// A tool listed twice is an error.
func LoadTiers(path string) (map[string]ToolInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tier config %s: %w", path, err)
	}
	tools, err := ParseTiers(data)
	if err != nil {
		return nil, fmt.Errorf("tier config %s: %w", path, err)
	}
	return tools, nil
}

// ParseTiers parses tool tiers YAML.
func ParseTiers(data []byte) (map[string]ToolInfo, error) {
	var tf tierFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}

	tools := make(map[string]ToolInfo)
	add := func(service, tier string, names []string) error {
		for _, name := range names {
			if prev, dup := tools[name]; dup {
				return fmt.Errorf("tool %q listed under both %s/%s and %s/%s", name, prev.Service, prev.Tier, service, tier)
			}
			tools[name] = ToolInfo{Tier: tier, Service: service}
		}
		return nil
	}
	for service, tiers := range tf.Services {
		if err := add(service, "core", tiers.Core); err != nil {
			return nil, err
		}
		if err := add(service, "extended", tiers.Extended); err != nil {
			return nil, err
		}
		if err := add(service, "complete", tiers.Complete); err != nil {
			return nil, err
		}
	}
	return tools, nil
}

// TierLevel returns the numeric level for a tier name (higher = more inclusive).
func TierLevel(tier string) int {
	switch tier {
	case "core":
		return 1
	case "extended":
		return 2
	case "complete":
		return 3
	default:
		return 0
	}
}
