package builder

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/traingrid/internal/ctxlog"
	"github.com/vk/traingrid/internal/device"
	"github.com/vk/traingrid/internal/profile"
	"github.com/vk/traingrid/internal/suite"
)

const referenceFixture = `model_name:transformer
python:python3.7
gpu_list:0|0,1
use_gpu:True
epoch:lite_train_lite_infer=2|whole_train_whole_infer=300
train_batch_size:lite_train_lite_infer=4|whole_train_whole_infer=2048
trainer:norm_train
norm_train:python3.7 train.py --config configs/transformer.base.yaml
to_static_train:--to_static
##
export:python3.7 export_model.py --config configs/transformer.base.yaml
inference:python3.7 predict.py --config configs/transformer.base.yaml
sed -i 's/random_seed: None/random_seed: 128/g' configs/transformer.base.yaml
`

func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train_infer.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuild_ReferenceChains(t *testing.T) {
	path := writeFixture(t, referenceFixture)
	s := &suite.Suite{Runs: []*suite.Run{{
		Name:        "transformer",
		FixturePath: path,
		Modes:       []profile.Mode{profile.LiteTrainLiteInfer, profile.WholeInfer},
	}}}

	graph, plans, err := Build(testContext(t), s, device.Capabilities{})
	require.NoError(t, err)
	require.Len(t, plans, 2)

	lite := plans[0]
	assert.Equal(t, []string{
		"transformer/patch",
		"transformer/lite_train_lite_infer/train",
		"transformer/lite_train_lite_infer/export",
		"transformer/lite_train_lite_infer/infer",
	}, lite.NodeIDs)

	// whole_infer has no training phase and does not repeat the shared patch.
	inferOnly := plans[1]
	assert.Equal(t, []string{"transformer/whole_infer/infer"}, inferOnly.NodeIDs)

	// Both chains hang off the single patch node.
	patch := graph.Nodes["transformer/patch"]
	require.NotNil(t, patch)
	assert.Len(t, patch.Dependents, 2)

	train := graph.Nodes["transformer/lite_train_lite_infer/train"]
	require.NotNil(t, train)
	assert.Contains(t, train.Step.Command, "--epoch 2")
	assert.Contains(t, train.Step.Command, "--batch_size 4")
	assert.Contains(t, train.Step.Command, "--to_static")
	assert.Contains(t, train.Step.Command, "--device gpu:0,1")
}

func TestBuild_GPUOverride(t *testing.T) {
	path := writeFixture(t, referenceFixture)
	cpu := false
	s := &suite.Suite{Runs: []*suite.Run{{
		Name:        "transformer",
		FixturePath: path,
		Modes:       []profile.Mode{profile.LiteTrainLiteInfer},
		UseGPU:      &cpu,
	}}}

	graph, plans, err := Build(testContext(t), s, device.Capabilities{})
	require.NoError(t, err)
	assert.Equal(t, "cpu", plans[0].Device.String())

	train := graph.Nodes["transformer/lite_train_lite_infer/train"]
	assert.Contains(t, train.Step.Command, "--device cpu")
}

func TestBuild_NoPatchCommand(t *testing.T) {
	path := writeFixture(t, `model_name:m
python:python3
epoch:lite_train_lite_infer=1
trainer:norm_train
norm_train:python3 train.py
##
inference:python3 predict.py
`)
	s := &suite.Suite{Runs: []*suite.Run{{
		Name:        "m",
		FixturePath: path,
		Modes:       []profile.Mode{profile.LiteTrainLiteInfer},
	}}}

	graph, plans, err := Build(testContext(t), s, device.Capabilities{})
	require.NoError(t, err)
	assert.Equal(t, []string{"m/lite_train_lite_infer/train", "m/lite_train_lite_infer/infer"}, plans[0].NodeIDs)
	require.Len(t, graph.Roots(), 1)
	assert.Equal(t, "m/lite_train_lite_infer/train", graph.Roots()[0].ID)
}

func TestBuild_InvalidFixture(t *testing.T) {
	path := writeFixture(t, "model_name:m\n") // missing separator
	s := &suite.Suite{Runs: []*suite.Run{{
		Name:        "m",
		FixturePath: path,
		Modes:       []profile.Mode{profile.LiteTrainLiteInfer},
	}}}

	_, _, err := Build(testContext(t), s, device.Capabilities{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "separator")
}

func TestBuild_MissingFixtureFile(t *testing.T) {
	s := &suite.Suite{Runs: []*suite.Run{{
		Name:        "m",
		FixturePath: filepath.Join(t.TempDir(), "absent.txt"),
		Modes:       []profile.Mode{profile.LiteTrainLiteInfer},
	}}}

	_, _, err := Build(testContext(t), s, device.Capabilities{})
	require.Error(t, err)
}

func TestBuild_NoExecutableSteps(t *testing.T) {
	path := writeFixture(t, `model_name:m
python:python3
trainer:norm_train
norm_train:python3 train.py
##
inference:null
`)
	s := &suite.Suite{Runs: []*suite.Run{{
		Name:        "m",
		FixturePath: path,
		Modes:       []profile.Mode{profile.WholeInfer},
	}}}

	_, _, err := Build(testContext(t), s, device.Capabilities{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no executable steps")
}
