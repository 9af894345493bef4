package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/image_uris/imageuris"
	"github.com/byte4ever/image_uris/manifest"
)

func TestParseReference(t *testing.T) {
	t.Parallel()

	got, err := manifest.ParseReference(
		"image-uri://pytorch-smp/2.0.1"+
			"?py_version=py310&instance_type=ml.p5.48xlarge"+
			"&scope=training&container_version=cu121",
		manifest.Defaults{
			Region:       "eu-west-1",
			InstanceType: "ml.p4d.24xlarge",
		},
	)

	require.NoError(t, err)
	assert.Equal(
		t,
		imageuris.Params{
			Framework:        "pytorch-smp",
			Region:           "eu-west-1",
			Version:          "2.0.1",
			PyVersion:        "py310",
			InstanceType:     "ml.p5.48xlarge",
			Scope:            "training",
			ContainerVersion: "cu121",
		},
		got,
	)
}

func TestParseReference_defaults(t *testing.T) {
	t.Parallel()

	got, err := manifest.ParseReference(
		"image-uri://pytorch/2.0",
		manifest.Defaults{
			Region:       "us-east-1",
			InstanceType: "ml.c5.xlarge",
			PyVersion:    "py310",
			Scope:        "inference",
		},
	)

	require.NoError(t, err)
	assert.Equal(t, "pytorch", got.Framework)
	assert.Equal(t, "2.0", got.Version)
	assert.Equal(t, "us-east-1", got.Region)
	assert.Equal(t, "ml.c5.xlarge", got.InstanceType)
	assert.Equal(t, "py310", got.PyVersion)
	assert.Equal(t, "inference", got.Scope)
}

func TestParseReference_invalid(t *testing.T) {
	t.Parallel()

	for _, ref := range []string{
		"pytorch:2.0.1",
		"image-uri://",
		"image-uri://pytorch",
		"image-uri://pytorch/",
		"image-uri://pytorch/2.0/extra",
		"image-uri://pytorch/%zz",
	} {
		_, err := manifest.ParseReference(ref, manifest.Defaults{})
		require.Error(t, err, ref)
		assert.Contains(t, err.Error(), "parsing image reference", ref)
	}
}

func TestIsReference(t *testing.T) {
	t.Parallel()

	assert.True(t, manifest.IsReference("image-uri://pytorch/2.0.1"))
	assert.False(t, manifest.IsReference("busybox:1.36"))
	assert.False(t, manifest.IsReference("//bazel/target:image"))
}
