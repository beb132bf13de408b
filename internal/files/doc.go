// Package files finds sample folders and organises run artifacts on disk.
//
// This package contains two main components:
//
// Locator: lists the subdirectories of the scan root, detects or applies the
// sample folder prefix, derives each sample identifier and its expected
// report path, and returns the samples in natural order. Missing reports and
// empty identifiers are recorded as discovery diagnostics.
//
// Manager: creates the results tree and moves staged artifacts into it,
// replacing files left by a previous run. It never writes outside the
// results directory.
//
// Example usage:
//
//	locator := files.NewLocator(files.LocatorOptions{
//	    Root:          "/data/run42",
//	    ReportPattern: "sample{id}.{id}.report.json",
//	}, logger)
//	samples, err := locator.Locate(ctx, collector)
//
//	manager := files.NewManager(paths, logger)
//	if err := manager.EnsureLayout(); err != nil {
//	    return err
//	}
//	dst, err := manager.PromoteTable("Microorganisms_table.xlsx")
package files
