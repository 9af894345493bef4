package imageuris

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/valyala/fasttemplate"
)

// uriTemplate is the ECR image URI layout. Placeholders
// use single braces.
const uriTemplate = "{account}.dkr.ecr.{region}.{domain}/{repository}:{tag}"

var uriTpl = fasttemplate.New(uriTemplate, "{", "}")

// Params selects a single image from the catalog.
type Params struct {
	// Framework is the configuration table name, e.g.
	// "pytorch" or "pytorch-smp".
	Framework string
	// Region is the AWS region of the registry.
	Region string
	// Version is a framework version or alias.
	Version string
	// PyVersion is the Python version, e.g. "py310".
	// It may be empty when exactly one is supported.
	PyVersion string
	// InstanceType decides the processor type.
	InstanceType string
	// Scope is the image scope, ScopeTraining when
	// empty.
	Scope string
	// ContainerVersion overrides the container build
	// suffix from the configuration table.
	ContainerVersion string
}

// Retrieve resolves p against the default catalog.
func Retrieve(p Params) (string, error) {
	ca, err := DefaultCatalog()
	if err != nil {
		return "", err
	}

	return ca.Retrieve(p)
}

// Retrieve resolves p into an image URI. Lookup failures
// match ErrConfigNotFound.
func (ca *Catalog) Retrieve(p Params) (string, error) {
	const errCtx = "retrieving image uri"

	scope := p.Scope
	if scope == "" {
		scope = ScopeTraining
	}

	fc, err := ca.framework(p.Framework)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	sc, err := fc.Scope(scope)
	if err != nil {
		return "", fmt.Errorf(
			"%s: %s: %w", errCtx, p.Framework, err,
		)
	}

	version, vc, err := sc.Version(p.Version)
	if err != nil {
		return "", fmt.Errorf(
			"%s: %s: %w", errCtx, p.Framework, err,
		)
	}

	processor, err := processorFor(
		p.InstanceType, sc.Processors,
	)
	if err != nil {
		return "", fmt.Errorf(
			"%s: %s %s: %w",
			errCtx, p.Framework, version, err,
		)
	}

	pyVersion, err := pythonVersion(p.PyVersion, vc.PyVersions)
	if err != nil {
		return "", fmt.Errorf(
			"%s: %s %s: %w",
			errCtx, p.Framework, version, err,
		)
	}

	account, ok := vc.Registries[p.Region]
	if !ok {
		return "", fmt.Errorf(
			"%s: %s %s: %w",
			errCtx, p.Framework, version,
			&ConfigError{
				Field:     "region",
				Value:     p.Region,
				Supported: slices.Sorted(maps.Keys(vc.Registries)),
			},
		)
	}

	containerVersion := p.ContainerVersion
	if containerVersion == "" {
		containerVersion = vc.containerVersionFor(
			p.InstanceType, processor,
		)
	}

	uri := uriTpl.ExecuteString(map[string]any{
		"account":    account,
		"region":     p.Region,
		"domain":     RegionDomain(p.Region),
		"repository": vc.Repository,
		"tag": formatTag(
			version, processor, pyVersion, containerVersion,
		),
	})

	slog.Debug(
		"resolved image uri",
		"framework", p.Framework,
		"scope", scope,
		"version", version,
		"region", p.Region,
		"uri", uri,
	)

	return uri, nil
}

// RegionDomain returns the DNS suffix of the partition
// that hosts region.
func RegionDomain(region string) string {
	switch {
	case strings.HasPrefix(region, "cn-"):
		return "amazonaws.com.cn"
	case strings.HasPrefix(region, "us-isob-"):
		return "sc2s.sgov.gov"
	case strings.HasPrefix(region, "us-iso-"):
		return "c2s.ic.gov"
	default:
		return "amazonaws.com"
	}
}

// containerVersionFor looks up the container build
// suffix by instance family, then family generation,
// then processor.
func (vc *VersionConfig) containerVersionFor(
	instanceType string,
	processor string,
) string {
	if len(vc.ContainerVersion) == 0 {
		return ""
	}

	if family, err := InstanceFamily(instanceType); err == nil {
		if cv, ok := vc.ContainerVersion[family]; ok {
			return cv
		}

		if cv, ok := vc.ContainerVersion[familyGeneration(family)]; ok {
			return cv
		}
	}

	return vc.ContainerVersion[processor]
}

// pythonVersion validates pyVersion. An empty value
// selects the only supported version. Versions without
// a Python list ignore it.
func pythonVersion(
	pyVersion string,
	supported []string,
) (string, error) {
	if len(supported) == 0 {
		return pyVersion, nil
	}

	if pyVersion == "" && len(supported) == 1 {
		return supported[0], nil
	}

	if !slices.Contains(supported, pyVersion) {
		return "", &ConfigError{
			Field:     "py_version",
			Value:     pyVersion,
			Supported: slices.Sorted(slices.Values(supported)),
		}
	}

	return pyVersion, nil
}

// formatTag joins the non-empty tag parts with "-".
func formatTag(parts ...string) string {
	kept := make([]string, 0, len(parts))

	for _, pa := range parts {
		if pa != "" {
			kept = append(kept, pa)
		}
	}

	return strings.Join(kept, "-")
}
