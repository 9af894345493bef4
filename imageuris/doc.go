// Package imageuris resolves training job parameters into fully-qualified
// container image URIs. Supported images are described by static
// configuration tables (one file per framework) embedded in the binary and
// optionally overridden from a directory of JSON or YAML files.
//
// The Catalog type holds the loaded tables. Retrieve resolves a single image
// from explicit parameters, and TrainingImageURI picks between the standard
// training image and the model-parallel variant based on the distribution
// configuration of a job.
package imageuris
