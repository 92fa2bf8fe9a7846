package suite

// suiteConfig is the top-level HCL structure of a suite manifest file.
type suiteConfig struct {
	Settings *settingsBlock `hcl:"settings,block"`
	Runs     []*runBlock    `hcl:"run,block"`
}

// settingsBlock holds run-wide harness settings.
type settingsBlock struct {
	StorePath string `hcl:"store_path,optional"`
	ReportURL string `hcl:"report_url,optional"`
	Workers   int    `hcl:"workers,optional"`
}

// runBlock selects one fixture and the modes to run it in.
type runBlock struct {
	Name    string            `hcl:"name,label"`
	Fixture string            `hcl:"fixture"`
	Modes   []string          `hcl:"modes"`
	Workdir string            `hcl:"workdir,optional"`
	Env     map[string]string `hcl:"env,optional"`
	UseGPU  *bool             `hcl:"use_gpu,optional"`
}
