// Package cochlea simulates the auditory periphery: it converts a sound
// pressure waveform (Pa) into auditory nerve fiber spike trains.
//
// A run passes the signal through the outer/middle-ear filter, then for
// each center frequency (channel) through the basilar membrane, inner hair
// cell and synapse stages, and finally draws spike trains for every trial
// and enabled fiber type (HSR, MSR, LSR).
//
// # Quick Start
//
//	sound, _ := cochlea.PureTone(100e3, 1000, 0.1, 50, 0.005)
//	table, err := cochlea.RunSpikes(sound, 100e3, cochlea.Range(125, 8000, 20), 5, 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, rec := range table.ByFiber(cochlea.HSR) {
//	    fmt.Println(rec.CF, rec.Trial, len(rec.Spikes))
//	}
//
// # Channels
//
// [Single] selects one frequency, [List] an explicit set and [Range] a
// Greenwood-spaced bank between two frequencies, using the constants of
// the configured [Species].
//
// # Reproducibility
//
// Runs are deterministic for a given Config.Seed. With [SeedShared] (the
// default) one random stream is consumed in channel, trial, fiber order,
// so a channel's spikes change when channels are added or removed. With
// [SeedPerChannel] each channel has its own stream derived from the seed
// and the channel index. Parallel runs always use per-channel seeding and
// give the same table as a sequential per-channel run.
//
// # Models
//
// The built-in model is driven by DSAM-style parameter files embedded in
// the package; Config.ParDir replaces them. Any [Model] implementation can
// be plugged in through Config.Model.
//
// # Export
//
// Tables can be written as parquet ([Table.WriteParquet]) and read back
// with [ReadParquet], or written as CSV with [Table.WriteCSV].
package cochlea
