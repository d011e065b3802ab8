// Package analysis extracts signals from recorded frames and characterizes them.
//
//   - [PowerSpectrum], [DominantFrequency]: spectrum of one body coordinate
//   - [Extract], [PhasePortrait]: per-body series and phase space trajectories
//   - [Crossings], [Period]: threshold crossings of an oscillating coordinate
//   - [Divergence]: growth rate of the separation of two nearby runs
//
// A spring scene oscillates at sqrt(k/m)/2π; the dominant frequency of the
// weight's y coordinate recovers it:
//
//	ys, _ := analysis.Extract(frames, id, analysis.Y)
//	f, _ := analysis.DominantFrequency(ys, dt)
package analysis
