package imageuris_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/image_uris/imageuris"
)

func TestRetrieve(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name   string
		params imageuris.Params
		want   string
	}{
		{
			name: "cpu_alias",
			params: imageuris.Params{
				Framework:    "pytorch",
				Region:       "us-east-1",
				Version:      "2.0",
				PyVersion:    "py310",
				InstanceType: "ml.c5.xlarge",
			},
			want: "763104351884.dkr.ecr.us-east-1.amazonaws.com/" +
				"pytorch-training:2.0.1-cpu-py310",
		},
		{
			name: "default_py_version",
			params: imageuris.Params{
				Framework:    "pytorch",
				Region:       "eu-west-1",
				Version:      "1.13.1",
				InstanceType: "ml.g5.2xlarge",
			},
			want: "763104351884.dkr.ecr.eu-west-1.amazonaws.com/" +
				"pytorch-training:1.13.1-gpu-py39",
		},
		{
			name: "inference_scope",
			params: imageuris.Params{
				Framework:    "pytorch",
				Region:       "us-west-2",
				Version:      "2.1",
				PyVersion:    "py310",
				InstanceType: "ml.g5.xlarge",
				Scope:        imageuris.ScopeInference,
			},
			want: "763104351884.dkr.ecr.us-west-2.amazonaws.com/" +
				"pytorch-inference:2.1.0-gpu-py310",
		},
		{
			name: "special_account",
			params: imageuris.Params{
				Framework:    "pytorch",
				Region:       "ap-northeast-3",
				Version:      "2.0.1",
				PyVersion:    "py310",
				InstanceType: "ml.p4d.24xlarge",
			},
			want: "364406365360.dkr.ecr.ap-northeast-3.amazonaws.com/" +
				"pytorch-training:2.0.1-gpu-py310",
		},
		{
			name: "china_partition",
			params: imageuris.Params{
				Framework:    "pytorch",
				Region:       "cn-north-1",
				Version:      "2.0.1",
				PyVersion:    "py310",
				InstanceType: "ml.p3.2xlarge",
			},
			want: "727897471807.dkr.ecr.cn-north-1.amazonaws.com.cn/" +
				"pytorch-training:2.0.1-gpu-py310",
		},
		{
			name: "iso_partition",
			params: imageuris.Params{
				Framework:    "pytorch",
				Region:       "us-iso-east-1",
				Version:      "2.0.1",
				PyVersion:    "py310",
				InstanceType: "local",
			},
			want: "886529160074.dkr.ecr.us-iso-east-1.c2s.ic.gov/" +
				"pytorch-training:2.0.1-cpu-py310",
		},
		{
			name: "single_processor_without_instance",
			params: imageuris.Params{
				Framework: "pytorch-smp",
				Region:    "us-east-1",
				Version:   "2.0.1",
				PyVersion: "py310",
			},
			want: "658645717510.dkr.ecr.us-east-1.amazonaws.com/" +
				"smdistributed-modelparallel:2.0.1-gpu-py310-cu118",
		},
		{
			name: "container_version_override",
			params: imageuris.Params{
				Framework:        "pytorch-smp",
				Region:           "us-east-1",
				Version:          "2.0.1",
				PyVersion:        "py310",
				InstanceType:     "ml.p5.48xlarge",
				ContainerVersion: "cu122",
			},
			want: "658645717510.dkr.ecr.us-east-1.amazonaws.com/" +
				"smdistributed-modelparallel:2.0.1-gpu-py310-cu122",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := imageuris.Retrieve(tc.params)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRetrieve_config_not_found(t *testing.T) {
	t.Parallel()

	valid := imageuris.Params{
		Framework:    "pytorch",
		Region:       "us-east-1",
		Version:      "2.0.1",
		PyVersion:    "py310",
		InstanceType: "ml.p4d.24xlarge",
	}

	testcases := []struct {
		name   string
		mutate func(p *imageuris.Params)
		field  string
	}{
		{
			name:   "framework",
			mutate: func(p *imageuris.Params) { p.Framework = "mxnet" },
			field:  "framework",
		},
		{
			name:   "scope",
			mutate: func(p *imageuris.Params) { p.Scope = "eia" },
			field:  "image scope",
		},
		{
			name:   "version",
			mutate: func(p *imageuris.Params) { p.Version = "0.4.0" },
			field:  "version",
		},
		{
			name:   "py_version",
			mutate: func(p *imageuris.Params) { p.PyVersion = "py27" },
			field:  "py_version",
		},
		{
			name:   "region",
			mutate: func(p *imageuris.Params) { p.Region = "xx-east-9" },
			field:  "region",
		},
		{
			name: "processor",
			mutate: func(p *imageuris.Params) {
				p.InstanceType = "ml.trn1.32xlarge"
			},
			field: "processor",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			params := valid
			tc.mutate(&params)

			_, err := imageuris.Retrieve(params)
			require.ErrorIs(t, err, imageuris.ErrConfigNotFound)

			var cfgErr *imageuris.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.field, cfgErr.Field)
			assert.NotEmpty(t, cfgErr.Supported)
		})
	}
}

func TestRetrieve_missing_instance_type(t *testing.T) {
	t.Parallel()

	_, err := imageuris.Retrieve(imageuris.Params{
		Framework: "pytorch",
		Region:    "us-east-1",
		Version:   "2.0.1",
		PyVersion: "py310",
	})

	require.ErrorIs(t, err, imageuris.ErrInvalidInstanceType)
	assert.Contains(t, err.Error(), "cpu, gpu")
}

func TestRegionDomain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "amazonaws.com", imageuris.RegionDomain("us-west-2"))
	assert.Equal(t, "amazonaws.com.cn", imageuris.RegionDomain("cn-northwest-1"))
	assert.Equal(t, "c2s.ic.gov", imageuris.RegionDomain("us-iso-east-1"))
	assert.Equal(t, "sc2s.sgov.gov", imageuris.RegionDomain("us-isob-east-1"))
}

func TestFormatTag(t *testing.T) {
	t.Parallel()

	assert.Equal(
		t,
		"2.0.1-gpu-py310-cu121",
		imageuris.FormatTagForTest("2.0.1", "gpu", "py310", "cu121"),
	)
	assert.Equal(
		t,
		"2.0.1-cpu-py310",
		imageuris.FormatTagForTest("2.0.1", "cpu", "py310", ""),
	)
	assert.Equal(
		t,
		"1.0-cpu",
		imageuris.FormatTagForTest("1.0", "cpu", "", ""),
	)
}

func TestPythonVersion(t *testing.T) {
	t.Parallel()

	got, err := imageuris.PythonVersionForTest("", nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = imageuris.PythonVersionForTest("py3", nil)
	require.NoError(t, err)
	assert.Equal(t, "py3", got)

	_, err = imageuris.PythonVersionForTest(
		"", []string{"py39", "py310"},
	)
	require.ErrorIs(t, err, imageuris.ErrConfigNotFound)
}
