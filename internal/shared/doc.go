// Package shared holds helpers used across packages that belong to no single
// layer.
//
// The testutil subpackage captures slog output so tests can assert on what a
// component logged:
//
//	logger, logs := testutil.NewTestLogger(t)
//	svc := services.NewExportService(st, paths, "tables", cfg, nil, logger)
//	...
//	testutil.AssertLogContains(t, logs, slog.LevelWarn, "pivot replaced by error table")
package shared
