// Package dataprocessing turns sample report JSON into table records.
//
// # Architecture
//
// The package is organized into four main components:
//
// 1. Node: a read-only view over a fastjson value whose accessors report
// absence instead of failing, so missing and mistyped fields are handled
// the same way everywhere.
// 2. Loader: reads one report, parses it and checks that the top level is
// an object.
// 3. Extractor: reads the microorganism and AMR marker arrays, records
// field-level diagnostics and computes relative abundance.
// 4. Aggregator: appends per-sample records into the two run-wide tables.
//
// # Usage
//
//	loader := dataprocessing.NewLoader(logger)
//	extractor := dataprocessing.NewExtractor(collector, logger)
//	agg := dataprocessing.NewAggregator()
//
//	for _, sample := range samples {
//	    report, err := loader.Load(ctx, sample)
//	    if err != nil {
//	        collector.Error(ctx, err.(*apperrors.ProcessingError))
//	        continue
//	    }
//	    agg.Add(extractor.Extract(ctx, report))
//	}
//	tables := agg.Tables()
package dataprocessing
