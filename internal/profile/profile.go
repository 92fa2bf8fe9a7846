package profile

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vk/traingrid/internal/fixture"
)

// Profile is the typed view of one pipeline fixture.
type Profile struct {
	ModelName string
	Python    string

	// DeviceLists holds the alternatives from `gpu_list`, e.g. "0|0,1"
	// becomes [["0"], ["0","1"]]. Empty when the fixture is CPU-only.
	DeviceLists [][]string
	UseGPU      bool

	AutoCast  string
	Epochs    ModalValue
	BatchSize ModalValue

	SaveModelDir    string
	PretrainedModel string

	// Trainer is the selected trainer label (e.g. "norm_train") and
	// TrainCommand the command template registered under that label.
	Trainer      string
	TrainCommand string

	// AltTrainers holds the alternative trainer flags that are set in the
	// fixture (pact_train, fpgm_train, distill_train). Unset (`null`)
	// trainers are omitted entirely.
	AltTrainers map[string]string

	// ToStatic is the ahead-of-time graph compilation flag appended to the
	// training command when set.
	ToStatic string

	ExportCommand string
	InferCommand  string

	// PatchCommand is the fixture's raw trailing command, empty if absent.
	PatchCommand string
}

// altTrainerKeys are the alternative training-mode flags a fixture may set
// instead of the normal trainer.
var altTrainerKeys = []string{"pact_train", "fpgm_train", "distill_train"}

// Decode builds a Profile from a parsed fixture. The fixture should already
// have passed Validate; Decode only checks semantic requirements.
func Decode(f *fixture.File) (*Profile, error) {
	p := &Profile{AltTrainers: map[string]string{}}

	var err error
	if p.ModelName, err = required(f, "model_name"); err != nil {
		return nil, err
	}
	if p.Python, err = required(f, "python"); err != nil {
		return nil, err
	}

	if v := optional(f, "gpu_list"); v != "" {
		for _, alt := range strings.Split(v, "|") {
			p.DeviceLists = append(p.DeviceLists, strings.Split(alt, ","))
		}
	}
	if v := optional(f, "use_gpu"); v != "" {
		// Alternatives like "True|False" mean the harness may pick either;
		// GPU is preferred whenever it is offered.
		p.UseGPU = strings.Contains(strings.ToLower(v), "true")
	}

	p.AutoCast = optional(f, "auto_cast")
	p.SaveModelDir = optional(f, "save_model_dir")
	p.PretrainedModel = optional(f, "pretrained_model")

	if p.Epochs, err = modal(f, "epoch"); err != nil {
		return nil, err
	}
	if p.BatchSize, err = modal(f, "train_batch_size"); err != nil {
		return nil, err
	}

	if p.Trainer, err = required(f, "trainer"); err != nil {
		return nil, err
	}
	trainCmd, ok := f.Lookup(p.Trainer)
	if !ok || trainCmd == fixture.NullValue {
		return nil, fmt.Errorf("trainer %q has no command template", p.Trainer)
	}
	p.TrainCommand = trainCmd

	for _, key := range altTrainerKeys {
		if v := optional(f, key); v != "" {
			p.AltTrainers[key] = v
		}
	}
	p.ToStatic = optional(f, "to_static_train")

	p.ExportCommand = optional(f, "export")
	p.InferCommand = optional(f, "inference")

	if cmd, ok := f.Command(); ok {
		p.PatchCommand = cmd
	}

	return p, nil
}

// required returns the value for key, failing on a missing key or a `null`
// marker.
func required(f *fixture.File, key string) (string, error) {
	v, ok := f.Lookup(key)
	if !ok {
		return "", fmt.Errorf("fixture is missing required key %q", key)
	}
	if v == fixture.NullValue || v == "" {
		return "", fmt.Errorf("required key %q is unset", key)
	}
	return v, nil
}

// optional returns the value for key, mapping `null` and absence to "".
func optional(f *fixture.File, key string) string {
	v, ok := f.Lookup(key)
	if !ok || v == fixture.NullValue {
		return ""
	}
	return v
}

func modal(f *fixture.File, key string) (ModalValue, error) {
	v := optional(f, key)
	if v == "" {
		return ModalValue{}, nil
	}
	mv, err := parseModal(v)
	if err != nil {
		return ModalValue{}, fmt.Errorf("key %q: %w", key, err)
	}
	return mv, nil
}

// IterationsFor returns the training iteration count for a mode.
func (p *Profile) IterationsFor(mode Mode) (int, error) {
	v, ok := p.Epochs.For(mode)
	if !ok {
		return 0, fmt.Errorf("fixture defines no iteration count for mode %q", mode)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("iteration count for mode %q: %w", mode, err)
	}
	return n, nil
}

// RenderTrainCommand produces the training command line for a mode. Values
// the fixture leaves unset are omitted; a fixture that sets epoch but gives
// the mode no iteration count is an error. Overrides are appended last as
// `--key value` in sorted order so the result is deterministic.
func (p *Profile) RenderTrainCommand(mode Mode, overrides map[string]string) (string, error) {
	if !mode.Trains() {
		return "", fmt.Errorf("mode %q has no training phase", mode)
	}
	parts := []string{p.TrainCommand}

	if !p.Epochs.IsZero() {
		n, err := p.IterationsFor(mode)
		if err != nil {
			return "", err
		}
		parts = append(parts, "--epoch", strconv.Itoa(n))
	}
	if v, ok := p.BatchSize.For(mode); ok {
		parts = append(parts, "--batch_size", v)
	}
	if p.SaveModelDir != "" {
		parts = append(parts, "--save_model_dir", p.SaveModelDir)
	}
	if p.PretrainedModel != "" {
		parts = append(parts, "--pretrained_model", p.PretrainedModel)
	}
	if p.ToStatic != "" {
		parts = append(parts, p.ToStatic)
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, "--"+k, overrides[k])
	}

	return strings.Join(parts, " "), nil
}
