package ingest

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"

	"github.com/gridplan/gridplan/internal/core/topology"
)

// =============================================================================
// Compose Import
// =============================================================================

// DefaultStorageSize is assumed for named compose volumes, which carry
// no size information.
const DefaultStorageSize = "1Gi"

// ParseComposeTopology imports a Docker Compose document as a topology
// snapshot. This is a pure function - no I/O, no side effects.
//
// Mapping:
//   - services become Service nodes; depends_on becomes required
//     DependsOn edges
//   - named volumes become Storage nodes with MountsVolume edges from
//     each consuming service
//   - the first port of a service becomes its exposed port
//   - deploy resource limits become resource requirements
func ParseComposeTopology(yamlContent string) (*topology.Graph, error) {
	if strings.TrimSpace(yamlContent) == "" {
		return nil, ErrEmptyInput
	}

	project, err := loadComposeProject(yamlContent)
	if err != nil {
		return nil, err
	}

	if err := checkUnsupportedFeatures(project); err != nil {
		return nil, err
	}

	if len(project.Services) == 0 {
		return nil, ErrNoServices
	}

	var nodes []topology.Node
	var edges []topology.Edge

	// Services in name order so the snapshot is deterministic.
	names := make([]string, 0, len(project.Services))
	for name := range project.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	// Track which named volumes are actually consumed and where.
	volumeMounts := make(map[string][]topology.Edge)
	volumePaths := make(map[string]string)

	for _, name := range names {
		svc := project.Services[name]

		node, err := convertComposeService(svc)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, topology.Node{ID: svc.Name, Data: node})

		deps := make([]string, 0, len(svc.DependsOn))
		for dep := range svc.DependsOn {
			deps = append(deps, dep)
		}
		sort.Strings(deps)
		for _, dep := range deps {
			edges = append(edges, topology.Edge{
				From: svc.Name,
				To:   dep,
				Data: topology.DependsOn{Required: true},
			})
		}

		for _, v := range svc.Volumes {
			if v.Type != "volume" || v.Source == "" {
				continue
			}
			volumeMounts[v.Source] = append(volumeMounts[v.Source], topology.Edge{
				From: svc.Name,
				To:   v.Source,
				Data: topology.MountsVolume{MountPath: v.Target, ReadOnly: v.ReadOnly},
			})
			if _, ok := volumePaths[v.Source]; !ok {
				volumePaths[v.Source] = v.Target
			}
		}
	}

	// Storage nodes for consumed named volumes, in name order.
	volumes := make([]string, 0, len(volumeMounts))
	for name := range volumeMounts {
		volumes = append(volumes, name)
	}
	sort.Strings(volumes)

	for _, name := range volumes {
		nodes = append(nodes, topology.Node{
			ID: name,
			Data: topology.Storage{
				Name:      name,
				Kind:      topology.StorageLocalDisk,
				Size:      DefaultStorageSize,
				MountPath: volumePaths[name],
				Access:    topology.AccessReadWriteOnce,
			},
		})
		edges = append(edges, volumeMounts[name]...)
	}

	return topology.NewGraph(nodes, edges), nil
}

// loadComposeProject loads a compose document using compose-go.
func loadComposeProject(yamlContent string) (*types.Project, error) {
	var dict map[string]interface{}
	if err := yaml.Unmarshal([]byte(yamlContent), &dict); err != nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}
	if dict == nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}

	project, err := loader.LoadWithContext(context.Background(), types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Content: []byte(yamlContent),
				Config:  dict,
			},
		},
	}, func(opts *loader.Options) {
		opts.SetProjectName("gridplan-import", false)
		opts.SkipValidation = false
		opts.SkipInterpolation = false
		// In-memory input: no paths to resolve, no external files.
		opts.SkipNormalization = true
		opts.SkipExtends = true
	})
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "dependency cycle detected") {
			return nil, NewParseError("", "circular dependency detected", ErrCircularDependency)
		}
		return nil, NewParseError("", errStr, ErrInvalidYAML)
	}

	return project, nil
}

// checkUnsupportedFeatures rejects compose features with no topology
// equivalent.
func checkUnsupportedFeatures(project *types.Project) error {
	if len(project.Secrets) > 0 {
		return NewParseError("secrets", "secrets are not supported", ErrUnsupportedFeature)
	}
	if len(project.Configs) > 0 {
		return NewParseError("configs", "configs are not supported", ErrUnsupportedFeature)
	}
	for _, svc := range project.Services {
		if svc.Extends != nil && svc.Extends.File != "" {
			return NewParseError("services."+svc.Name+".extends", "extends is not supported", ErrUnsupportedFeature)
		}
	}
	return nil
}

// convertComposeService maps a compose service to a Service node.
func convertComposeService(svc types.ServiceConfig) (topology.Service, error) {
	if svc.Image == "" {
		return topology.Service{}, NewParseError("services."+svc.Name+".image", "service must have an image", ErrMissingField)
	}

	node := topology.Service{
		Name:        svc.Name,
		Environment: make(map[string]string),
	}

	// The container command maps onto command + args; the image name
	// stands in when the compose file relies on the image entrypoint.
	command := svc.Command
	if len(command) == 0 {
		command = svc.Entrypoint
	}
	if len(command) > 0 {
		node.Command = command[0]
		node.Args = append([]string{}, command[1:]...)
	} else {
		node.Command = svc.Image
	}

	for k, v := range svc.Environment {
		if v != nil {
			node.Environment[k] = *v
		}
	}

	if len(svc.Ports) > 0 {
		node.Port = int(svc.Ports[0].Target)
	}

	if svc.HealthCheck != nil && !svc.HealthCheck.Disable {
		node.HealthCheck = convertComposeHealthCheck(svc.HealthCheck)
	}

	// Note: compose-go's NanoCPUs is misnamed - it's the CPU count as float32
	if svc.Deploy != nil && svc.Deploy.Resources.Limits != nil {
		limits := svc.Deploy.Resources.Limits
		node.Resource.CPUCores = float64(limits.NanoCPUs)
		node.Resource.MemoryMB = int64(limits.MemoryBytes) / (1024 * 1024)
	}

	return node, nil
}

func convertComposeHealthCheck(hc *types.HealthCheckConfig) *topology.HealthCheck {
	out := &topology.HealthCheck{}

	test := hc.Test
	if len(test) > 0 && (test[0] == "CMD" || test[0] == "CMD-SHELL") {
		test = test[1:]
	}
	out.Endpoint = strings.Join(test, " ")

	if hc.Retries != nil {
		out.Retries = int(*hc.Retries)
	}
	if hc.Interval != nil {
		if d, err := time.ParseDuration(hc.Interval.String()); err == nil {
			out.IntervalSeconds = int(d.Seconds())
		}
	}
	if hc.Timeout != nil {
		if d, err := time.ParseDuration(hc.Timeout.String()); err == nil {
			out.TimeoutSeconds = int(d.Seconds())
		}
	}

	return out
}
