// Package orchestration runs the one-shot computations of the CLI: the
// sequence engine alone, or the engine and fast doubling side by side to
// cross-check the last term. It decouples the work from its presentation
// through the ProgressReporter and ResultPresenter interfaces.
package orchestration
