// Package device probes host hardware capabilities and picks the device
// list a pipeline run should use from the alternatives its fixture offers.
package device

import (
	"os"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// Capabilities describes what the host can offer a training pipeline.
type Capabilities struct {
	CPUBrand      string
	PhysicalCores int
	LogicalCores  int
	AVX2          bool
	AVX512        bool

	// VisibleGPUs is the ordinal list from CUDA_VISIBLE_DEVICES. Nil means
	// the variable is unset, which CUDA treats as "all devices visible".
	// An empty non-nil slice means the variable is set but empty, hiding
	// every device.
	VisibleGPUs []string
}

// Probe inspects the host CPU and the CUDA environment.
func Probe() Capabilities {
	caps := Capabilities{
		CPUBrand:      cpuid.CPU.BrandName,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  cpuid.CPU.LogicalCores,
		AVX2:          cpuid.CPU.Supports(cpuid.AVX2),
		AVX512:        cpuid.CPU.Supports(cpuid.AVX512F),
	}
	if v, ok := os.LookupEnv("CUDA_VISIBLE_DEVICES"); ok {
		// Set but empty hides every device, which must stay distinct from
		// unset (nil), where every listed ordinal counts as visible.
		caps.VisibleGPUs = []string{}
		for _, ord := range strings.Split(v, ",") {
			ord = strings.TrimSpace(ord)
			if ord != "" {
				caps.VisibleGPUs = append(caps.VisibleGPUs, ord)
			}
		}
	}
	return caps
}

// Selection is the device choice for one pipeline run.
type Selection struct {
	Kind    string   // "gpu" or "cpu"
	Devices []string // GPU ordinals, empty for CPU
}

// String renders the selection the way training scripts expect their
// --device argument, e.g. "gpu:0,1" or "cpu".
func (s Selection) String() string {
	if s.Kind == "cpu" || len(s.Devices) == 0 {
		return "cpu"
	}
	return "gpu:" + strings.Join(s.Devices, ",")
}

// Select picks a device list from the fixture's alternatives. When GPU use
// is requested, the largest alternative whose ordinals are all visible wins;
// with CUDA_VISIBLE_DEVICES unset every listed ordinal counts as visible.
// When nothing fits, or GPU use is not requested, the run falls back to CPU.
func (c Capabilities) Select(lists [][]string, useGPU bool) Selection {
	if !useGPU || len(lists) == 0 {
		return Selection{Kind: "cpu"}
	}

	var best []string
	for _, alt := range lists {
		if len(alt) <= len(best) {
			continue
		}
		if c.allVisible(alt) {
			best = alt
		}
	}
	if best == nil {
		return Selection{Kind: "cpu"}
	}
	return Selection{Kind: "gpu", Devices: best}
}

func (c Capabilities) allVisible(ordinals []string) bool {
	if c.VisibleGPUs == nil {
		return true
	}
	for _, ord := range ordinals {
		found := false
		for _, vis := range c.VisibleGPUs {
			if ord == vis {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
