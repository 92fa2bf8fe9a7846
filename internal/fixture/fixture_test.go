package fixture

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const referenceFixture = `===========================train_params===========================
model_name:transformer
python:python3.7
gpu_list:0|0,1
use_gpu:True
auto_cast:null
epoch:lite_train_lite_infer=2|whole_train_whole_infer=300
save_model_dir:./output/
train_batch_size:lite_train_lite_infer=4|whole_train_whole_infer=2048
pretrained_model:null
null:null
trainer:norm_train
norm_train:python3.7 train.py --config configs/transformer.base.yaml
pact_train:null
fpgm_train:null
distill_train:null
to_static_train:--to_static
null:null
##
===========================infer_params===========================
export:python3.7 export_model.py --config configs/transformer.base.yaml
inference:python3.7 predict.py --config configs/transformer.base.yaml
null:null
sed -i 's/random_seed: None/random_seed: 128/g; s/print_step: 100/print_step: 4/g; s/weight_sharing: True/weight_sharing: False/g' configs/transformer.base.yaml
`

func TestParse_ClassifiesLines(t *testing.T) {
	f, err := Parse(strings.NewReader(referenceFixture))
	require.NoError(t, err)

	counts := map[Kind]int{}
	for _, e := range f.Entries {
		counts[e.Kind]++
	}
	assert.Equal(t, 2, counts[KindBanner])
	assert.Equal(t, 1, counts[KindSeparator])
	assert.Equal(t, 1, counts[KindCommand])
	assert.Equal(t, 20, counts[KindPair])
}

func TestParse_FirstColonDelimits(t *testing.T) {
	f, err := Parse(strings.NewReader("norm_train:python3.7 train.py --save_dir ./out:latest\n"))
	require.NoError(t, err)
	require.Len(t, f.Entries, 1)

	e := f.Entries[0]
	assert.Equal(t, KindPair, e.Kind)
	assert.Equal(t, "norm_train", e.Key)
	assert.Equal(t, "python3.7 train.py --save_dir ./out:latest", e.Value)
}

func TestParse_EmptyValue(t *testing.T) {
	f, err := Parse(strings.NewReader("pretrained_model:\n"))
	require.NoError(t, err)

	e := f.Entries[0]
	assert.Equal(t, KindPair, e.Kind)
	assert.Equal(t, "pretrained_model", e.Key)
	assert.Equal(t, "", e.Value)
	assert.False(t, e.IsNull())
}

func TestParse_CRLF(t *testing.T) {
	f, err := Parse(strings.NewReader("model_name:transformer\r\n##\r\n"))
	require.NoError(t, err)
	require.Len(t, f.Entries, 2)
	assert.Equal(t, "transformer", f.Entries[0].Value)
	assert.Equal(t, KindSeparator, f.Entries[1].Kind)
}

func TestParse_CommandLineWithColons(t *testing.T) {
	f, err := Parse(strings.NewReader("sed -i 's/random_seed: None/random_seed: 128/g' conf.yaml\n"))
	require.NoError(t, err)
	assert.Equal(t, KindCommand, f.Entries[0].Kind)
}

func TestLookup_LastOccurrenceWins(t *testing.T) {
	f, err := Parse(strings.NewReader("epoch:2\nepoch:300\n"))
	require.NoError(t, err)

	v, ok := f.Lookup("epoch")
	require.True(t, ok)
	assert.Equal(t, "300", v)
}

func TestLookup_NullPlaceholderIgnored(t *testing.T) {
	f, err := Parse(strings.NewReader("null:null\n"))
	require.NoError(t, err)

	_, ok := f.Lookup("null")
	assert.False(t, ok)
}

func TestLookup_NullValueIsPresent(t *testing.T) {
	f, err := Parse(strings.NewReader(referenceFixture))
	require.NoError(t, err)

	v, ok := f.Lookup("pact_train")
	require.True(t, ok)
	assert.Equal(t, NullValue, v)
}

func TestHeaderTrainerPartition(t *testing.T) {
	f, err := Parse(strings.NewReader(referenceFixture))
	require.NoError(t, err)

	for _, e := range f.Header() {
		assert.NotEqual(t, KindCommand, e.Kind, "header must not contain commands")
	}

	trainer := f.Trainer()
	require.NotEmpty(t, trainer)

	var keys []string
	for _, e := range trainer {
		if e.Kind == KindPair && e.Key != NullValue {
			keys = append(keys, e.Key)
		}
	}
	assert.Equal(t, []string{"export", "inference"}, keys)
}

func TestCommand(t *testing.T) {
	f, err := Parse(strings.NewReader(referenceFixture))
	require.NoError(t, err)

	cmd, ok := f.Command()
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(cmd, "sed -i "))
	assert.True(t, strings.HasSuffix(cmd, "configs/transformer.base.yaml"))
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "train_infer.txt")
	require.NoError(t, os.WriteFile(path, []byte(referenceFixture), 0644))

	f, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path)
	require.NoError(t, f.Validate())
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}
