package manifest

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/byte4ever/image_uris/imageuris"
)

// Scheme prefixes image references resolved through the
// catalog, e.g.
//
//	image-uri://pytorch/2.0.1?py_version=py310&instance_type=ml.p5.48xlarge
const Scheme = "image-uri://"

// Defaults fill query parameters missing from a
// reference.
type Defaults struct {
	Region       string
	InstanceType string
	PyVersion    string
	Scope        string
}

// IsReference reports whether image must be resolved
// through the catalog.
func IsReference(image string) bool {
	return strings.HasPrefix(image, Scheme)
}

// ParseReference converts an image-uri reference into
// retrieval parameters.
func ParseReference(
	ref string,
	defaults Defaults,
) (imageuris.Params, error) {
	const errCtx = "parsing image reference"

	if !IsReference(ref) {
		return imageuris.Params{}, fmt.Errorf(
			"%s: %q: missing %s prefix",
			errCtx, ref, Scheme,
		)
	}

	ur, err := url.Parse(ref)
	if err != nil {
		return imageuris.Params{}, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	version := strings.Trim(ur.Path, "/")
	if ur.Host == "" || version == "" || strings.Contains(version, "/") {
		return imageuris.Params{}, fmt.Errorf(
			"%s: %q: expected %s<framework>/<version>",
			errCtx, ref, Scheme,
		)
	}

	query := ur.Query()

	return imageuris.Params{
		Framework:        ur.Host,
		Version:          version,
		Region:           queryOr(query, "region", defaults.Region),
		PyVersion:        queryOr(query, "py_version", defaults.PyVersion),
		InstanceType:     queryOr(query, "instance_type", defaults.InstanceType),
		Scope:            queryOr(query, "scope", defaults.Scope),
		ContainerVersion: query.Get("container_version"),
	}, nil
}

func queryOr(query url.Values, key string, fallback string) string {
	if val := query.Get(key); val != "" {
		return val
	}

	return fallback
}
