package imageuris

import (
	"fmt"
	"log/slog"
)

// Distribution keys that select the model-parallel
// training image.
const (
	launcherKey      = "torch_distributed"
	smdistributedKey = "smdistributed"
	modelParallelKey = "modelparallel"
	enabledKey       = "enabled"
)

// modelParallelFramework returns the configuration table
// of the model-parallel image of framework, if it has one.
func modelParallelFramework(framework string) (string, bool) {
	switch framework {
	case "pytorch":
		return "pytorch-smp", true
	default:
		return "", false
	}
}

// TrainingParams describes the image-relevant part of a
// training job.
type TrainingParams struct {
	Region           string
	Framework        string
	FrameworkVersion string
	PyVersion        string
	InstanceType     string

	// Distribution is the distributed training
	// configuration of the job, nil when the job is
	// not distributed.
	Distribution map[string]any

	// ImageURI, when set, is returned unchanged.
	ImageURI string
}

// TrainingImageURI resolves p against the default
// catalog.
func TrainingImageURI(p TrainingParams) (string, error) {
	ca, err := DefaultCatalog()
	if err != nil {
		return "", err
	}

	return ca.TrainingImageURI(p)
}

// TrainingImageURI returns the training image for a job.
// The model-parallel image is used when the framework
// has one and ModelParallelEnabled reports true for the
// distribution; otherwise the framework's standard
// training image is used.
func (ca *Catalog) TrainingImageURI(
	p TrainingParams,
) (string, error) {
	const errCtx = "resolving training image"

	if p.ImageURI != "" {
		return p.ImageURI, nil
	}

	params := Params{
		Framework:    p.Framework,
		Region:       p.Region,
		Version:      p.FrameworkVersion,
		PyVersion:    p.PyVersion,
		InstanceType: p.InstanceType,
		Scope:        ScopeTraining,
	}

	if smp, ok := modelParallelFramework(p.Framework); ok &&
		ModelParallelEnabled(p.Distribution) {
		slog.Debug(
			"model parallel image selected",
			"framework", p.Framework,
			"instance_type", p.InstanceType,
		)

		params.Framework = smp
	}

	uri, err := ca.Retrieve(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return uri, nil
}

// ModelParallelEnabled reports whether distribution
// requests the model-parallel image. Both the launcher
// key and smdistributed.modelparallel must be present;
// their values may be empty. An explicit
// "enabled: false" on modelparallel opts out.
func ModelParallelEnabled(distribution map[string]any) bool {
	if distribution == nil {
		return false
	}

	if _, ok := distribution[launcherKey]; !ok {
		return false
	}

	smd, ok := distribution[smdistributedKey].(map[string]any)
	if !ok {
		return false
	}

	mp, ok := smd[modelParallelKey]
	if !ok {
		return false
	}

	return enabledFlag(mp)
}

// enabledFlag interprets a strategy value: nil and maps
// without an "enabled" entry count as enabled.
func enabledFlag(val any) bool {
	switch typedVal := val.(type) {
	case bool:
		return typedVal
	case map[string]any:
		flag, ok := typedVal[enabledKey].(bool)
		if !ok {
			return true
		}

		return flag
	default:
		return true
	}
}
