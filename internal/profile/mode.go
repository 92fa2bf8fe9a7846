package profile

import "fmt"

// Mode is a harness-defined test mode label selecting iteration counts.
type Mode string

const (
	// LiteTrainLiteInfer runs a few training iterations and a short
	// inference pass, the cheapest smoke-level mode.
	LiteTrainLiteInfer Mode = "lite_train_lite_infer"
	// LiteTrainWholeInfer runs a few training iterations but the full
	// inference pass.
	LiteTrainWholeInfer Mode = "lite_train_whole_infer"
	// WholeTrainWholeInfer runs the full training schedule and the full
	// inference pass.
	WholeTrainWholeInfer Mode = "whole_train_whole_infer"
	// WholeInfer skips training and only runs inference.
	WholeInfer Mode = "whole_infer"
)

// AllModes lists every mode label the harness understands.
var AllModes = []Mode{LiteTrainLiteInfer, LiteTrainWholeInfer, WholeTrainWholeInfer, WholeInfer}

// ParseMode validates a mode label from a suite manifest or CLI flag.
func ParseMode(s string) (Mode, error) {
	for _, m := range AllModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown test mode %q", s)
}

// Trains reports whether the mode includes a training phase.
func (m Mode) Trains() bool {
	return m != WholeInfer
}
