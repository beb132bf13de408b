// Package shared holds helpers used across packages.
//
// The testutil subpackage provides a buffered slog handler so tests can
// assert on what a component logged:
//
//	logger, handler := testutil.NewTestLogger(t)
//	locator := files.NewLocator(opts, logger)
//	...
//	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Sample discovery complete")
package shared
