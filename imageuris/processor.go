package imageuris

import (
	"fmt"
	"slices"
	"strings"
)

// Processor types.
const (
	ProcessorCPU = "cpu"
	ProcessorGPU = "gpu"
	ProcessorInf = "inf"
	ProcessorTrn = "trn"
)

// Local mode instance types.
const (
	InstanceLocal    = "local"
	InstanceLocalGPU = "local_gpu"
)

// InstanceFamily returns the family of an "ml." instance
// type, e.g. "p3dn" for "ml.p3dn.24xlarge".
func InstanceFamily(instanceType string) (string, error) {
	parts := strings.Split(instanceType, ".")
	if len(parts) != 3 || parts[0] != "ml" ||
		parts[1] == "" || parts[2] == "" {
		return "", fmt.Errorf(
			"%w: %q", ErrInvalidInstanceType, instanceType,
		)
	}

	return parts[1], nil
}

// familyGeneration trims the trailing option letters of
// a family: "p3dn" -> "p3", "p5e" -> "p5".
func familyGeneration(family string) string {
	idx := strings.IndexFunc(family, func(r rune) bool {
		return r >= '0' && r <= '9'
	})
	if idx < 0 {
		return family
	}

	end := idx
	for end < len(family) && family[end] >= '0' && family[end] <= '9' {
		end++
	}

	return family[:end]
}

// Processor maps an instance type to its processor
// type. Local mode types are accepted.
func Processor(instanceType string) (string, error) {
	switch instanceType {
	case InstanceLocal:
		return ProcessorCPU, nil
	case InstanceLocalGPU:
		return ProcessorGPU, nil
	}

	family, err := InstanceFamily(instanceType)
	if err != nil {
		return "", err
	}

	switch {
	case strings.HasPrefix(family, "inf"):
		return ProcessorInf, nil
	case strings.HasPrefix(family, "trn"):
		return ProcessorTrn, nil
	case family[0] == 'p' || family[0] == 'g':
		return ProcessorGPU, nil
	default:
		return ProcessorCPU, nil
	}
}

// processorFor resolves the processor for instanceType
// and checks it against the supported list. An empty
// instance type selects the only supported processor.
func processorFor(
	instanceType string,
	supported []string,
) (string, error) {
	if instanceType == "" {
		if len(supported) == 1 {
			return supported[0], nil
		}

		return "", fmt.Errorf(
			"%w: empty instance type, one of %s is required",
			ErrInvalidInstanceType,
			strings.Join(supported, ", "),
		)
	}

	processor, err := Processor(instanceType)
	if err != nil {
		return "", err
	}

	if !slices.Contains(supported, processor) {
		return "", &ConfigError{
			Field:     "processor",
			Value:     processor,
			Supported: slices.Sorted(slices.Values(supported)),
		}
	}

	return processor, nil
}
