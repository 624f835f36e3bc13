package mathutil

import "math"

// DBToRatio converts a gain in dB to a linear amplitude ratio.
func DBToRatio(db float64) float64 {
	return math.Pow(10, db/dbAmplitudeFactor)
}

// RatioToDB converts a linear amplitude ratio to dB. Non-positive ratios are
// clamped to a tiny magnitude instead of returning -Inf.
func RatioToDB(ratio float64) float64 {
	return dbAmplitudeFactor * math.Log10(math.Max(ratio, minMagnitude))
}

// PascalToDBSPL converts an RMS pressure in Pa to dB SPL.
func PascalToDBSPL(rms float64) float64 {
	return RatioToDB(rms / ReferencePressure)
}

// DBSPLToPascal converts dB SPL to an RMS pressure in Pa.
func DBSPLToPascal(db float64) float64 {
	return ReferencePressure * DBToRatio(db)
}

// ERB returns the equivalent rectangular bandwidth in Hz at cf (Hz).
func ERB(cf float64) float64 {
	return erbMinimum * (erbSlopePerK*cf/1000 + 1)
}
