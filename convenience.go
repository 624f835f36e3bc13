package cochlea

// RunSpikes runs the default human model with all fiber types and the
// middle ear enabled, returning spike trains.
//
//	table, err := cochlea.RunSpikes(sound, 100e3, cochlea.Range(125, 16000, 40), 10, 0)
func RunSpikes(signal []float64, fs float64, channels ChannelSpec, trials int, seed uint64) (*Table, error) {
	cfg := DefaultConfig()
	cfg.SampleRate = fs
	cfg.Channels = channels
	cfg.Trials = trials
	cfg.Seed = seed
	return Run(signal, &cfg)
}

// RunSignals runs the default human model and returns the continuous
// synapse output of every fiber type for a single trial.
func RunSignals(signal []float64, fs float64, channels ChannelSpec) (*Table, error) {
	cfg := DefaultConfig()
	cfg.SampleRate = fs
	cfg.Channels = channels
	cfg.Output = OutputSignals
	return Run(signal, &cfg)
}

// RunParallel is RunSpikes on a worker pool with per-channel seeding.
func RunParallel(signal []float64, fs float64, channels ChannelSpec, trials int, seed uint64) (*Table, error) {
	cfg := DefaultConfig()
	cfg.SampleRate = fs
	cfg.Channels = channels
	cfg.Trials = trials
	cfg.Seed = seed
	cfg.Parallel = true
	return Run(signal, &cfg)
}
