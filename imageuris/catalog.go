package imageuris

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path"
	"slices"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
)

// Image scopes.
const (
	ScopeTraining  = "training"
	ScopeInference = "inference"
)

//go:embed data/*.json
var embeddedData embed.FS

// VersionConfig describes the images built for one
// framework version.
type VersionConfig struct {
	// PyVersions lists the supported Python versions
	// (e.g. "py310").
	PyVersions []string `json:"py_versions" yaml:"py_versions"`

	// Registries maps region to the AWS account that
	// hosts the repository there.
	Registries map[string]string `json:"registries" yaml:"registries"`

	// Repository is the ECR repository name.
	Repository string `json:"repository" yaml:"repository"`

	// ContainerVersion maps an instance family (e.g.
	// "p5") or a processor (e.g. "gpu") to the
	// container build suffix appended to the tag.
	ContainerVersion map[string]string `json:"container_version,omitempty" yaml:"container_version,omitempty"`
}

// ScopeConfig groups the versions available for one
// image scope.
type ScopeConfig struct {
	Processors     []string                  `json:"processors" yaml:"processors"`
	VersionAliases map[string]string         `json:"version_aliases,omitempty" yaml:"version_aliases,omitempty"`
	Versions       map[string]*VersionConfig `json:"versions" yaml:"versions"`
}

// FrameworkConfig maps image scope to its configuration.
type FrameworkConfig map[string]*ScopeConfig

// Catalog holds the configuration tables of every known
// framework. It is read-only once loaded.
type Catalog struct {
	frameworks map[string]FrameworkConfig
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	errDefault     error
)

// DefaultCatalog returns the catalog built from the
// embedded configuration tables. It is loaded once.
func DefaultCatalog() (*Catalog, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embeddedData, "data")
		if err != nil {
			errDefault = fmt.Errorf(
				"loading default catalog: %w", err,
			)

			return
		}

		defaultCatalog, errDefault = LoadCatalog(sub)
	})

	return defaultCatalog, errDefault
}

// NewCatalog loads the embedded configuration tables
// and overlays the framework files found in overrideDirs.
func NewCatalog(overrideDirs ...string) (*Catalog, error) {
	if len(overrideDirs) == 0 {
		return DefaultCatalog()
	}

	sub, err := fs.Sub(embeddedData, "data")
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	fsyss := []fs.FS{sub}
	for _, dir := range overrideDirs {
		fsyss = append(fsyss, os.DirFS(dir))
	}

	return LoadCatalog(fsyss...)
}

// LoadCatalog reads every *.json, *.yaml and *.yml file
// at the root of each filesystem. The file name without
// extension is the framework name. Frameworks found in
// later filesystems replace earlier ones.
func LoadCatalog(fsyss ...fs.FS) (*Catalog, error) {
	const errCtx = "loading catalog"

	ca := &Catalog{
		frameworks: make(map[string]FrameworkConfig),
	}

	for _, fsys := range fsyss {
		entries, err := fs.ReadDir(fsys, ".")
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			name, ok := frameworkName(entry.Name())
			if !ok {
				continue
			}

			fc, err := loadFrameworkFile(fsys, entry.Name())
			if err != nil {
				return nil, fmt.Errorf(
					"%s: %w", errCtx, err,
				)
			}

			if _, exists := ca.frameworks[name]; exists {
				slog.Debug(
					"overriding framework config",
					"framework", name,
					"file", entry.Name(),
				)
			}

			ca.frameworks[name] = fc
		}
	}

	slog.Debug(
		"catalog loaded",
		"frameworks", ca.Frameworks(),
	)

	return ca, nil
}

// Frameworks returns the sorted framework names.
func (ca *Catalog) Frameworks() []string {
	return slices.Sorted(maps.Keys(ca.frameworks))
}

// Framework returns a copy of the configuration of the
// named framework. Changes to the copy do not affect the
// catalog.
func (ca *Catalog) Framework(
	name string,
) (FrameworkConfig, error) {
	fc, err := ca.framework(name)
	if err != nil {
		return nil, err
	}

	return fc.clone(), nil
}

// framework returns the shared configuration of the
// named framework. Callers must not modify it.
func (ca *Catalog) framework(
	name string,
) (FrameworkConfig, error) {
	fc, ok := ca.frameworks[name]
	if !ok {
		return nil, &ConfigError{
			Field:     "framework",
			Value:     name,
			Supported: ca.Frameworks(),
		}
	}

	return fc, nil
}

func (fc FrameworkConfig) clone() FrameworkConfig {
	out := make(FrameworkConfig, len(fc))

	for scope, sc := range fc {
		out[scope] = sc.clone()
	}

	return out
}

func (sc *ScopeConfig) clone() *ScopeConfig {
	if sc == nil {
		return nil
	}

	out := &ScopeConfig{
		Processors:     slices.Clone(sc.Processors),
		VersionAliases: maps.Clone(sc.VersionAliases),
		Versions:       make(map[string]*VersionConfig, len(sc.Versions)),
	}

	for version, vc := range sc.Versions {
		out.Versions[version] = vc.clone()
	}

	return out
}

func (vc *VersionConfig) clone() *VersionConfig {
	if vc == nil {
		return nil
	}

	return &VersionConfig{
		PyVersions:       slices.Clone(vc.PyVersions),
		Registries:       maps.Clone(vc.Registries),
		Repository:       vc.Repository,
		ContainerVersion: maps.Clone(vc.ContainerVersion),
	}
}

// Scope returns the configuration of an image scope.
func (fc FrameworkConfig) Scope(
	scope string,
) (*ScopeConfig, error) {
	sc, ok := fc[scope]
	if !ok || sc == nil {
		return nil, &ConfigError{
			Field:     "image scope",
			Value:     scope,
			Supported: slices.Sorted(maps.Keys(fc)),
		}
	}

	return sc, nil
}

// Version resolves aliases and returns the full version
// together with its configuration.
func (sc *ScopeConfig) Version(
	version string,
) (string, *VersionConfig, error) {
	full := version
	if alias, ok := sc.VersionAliases[version]; ok {
		full = alias
	}

	vc, ok := sc.Versions[full]
	if !ok || vc == nil {
		supported := slices.Sorted(maps.Keys(sc.Versions))
		for alias := range sc.VersionAliases {
			supported = append(supported, alias)
		}

		slices.Sort(supported)

		return "", nil, &ConfigError{
			Field:     "version",
			Value:     version,
			Supported: supported,
		}
	}

	return full, vc, nil
}

// frameworkName strips a supported extension from a
// config file name.
func frameworkName(fileName string) (string, bool) {
	ext := path.Ext(fileName)

	switch ext {
	case ".json", ".yaml", ".yml":
		return strings.TrimSuffix(fileName, ext), true
	default:
		return "", false
	}
}

// loadFrameworkFile decodes a single framework file and
// validates it.
func loadFrameworkFile(
	fsys fs.FS,
	fileName string,
) (FrameworkConfig, error) {
	const errCtx = "loading framework file"

	raw, err := fs.ReadFile(fsys, fileName)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: %s: %w", errCtx, fileName, err,
		)
	}

	var fc FrameworkConfig

	if path.Ext(fileName) == ".json" {
		err = json.Unmarshal(raw, &fc)
	} else {
		err = yaml.Unmarshal(raw, &fc)
	}

	if err != nil {
		return nil, fmt.Errorf(
			"%s: decoding %s: %w", errCtx, fileName, err,
		)
	}

	if err := validateFramework(fc); err != nil {
		return nil, fmt.Errorf(
			"%s: %s: %w", errCtx, fileName, err,
		)
	}

	return fc, nil
}

// validateFramework checks that every scope lists
// processors and that every version names a repository
// and at least one registry.
func validateFramework(fc FrameworkConfig) error {
	if len(fc) == 0 {
		return errors.New("no image scopes defined")
	}

	for scope, sc := range fc {
		if sc == nil || len(sc.Versions) == 0 {
			return fmt.Errorf(
				"scope %s: no versions defined", scope,
			)
		}

		if len(sc.Processors) == 0 {
			return fmt.Errorf(
				"scope %s: no processors defined", scope,
			)
		}

		for alias, target := range sc.VersionAliases {
			if _, ok := sc.Versions[target]; !ok {
				return fmt.Errorf(
					"scope %s: alias %s points to unknown version %s",
					scope, alias, target,
				)
			}
		}

		for version, vc := range sc.Versions {
			if vc == nil || vc.Repository == "" {
				return fmt.Errorf(
					"scope %s: version %s: missing repository",
					scope, version,
				)
			}

			if len(vc.Registries) == 0 {
				return fmt.Errorf(
					"scope %s: version %s: no registries",
					scope, version,
				)
			}
		}
	}

	return nil
}
