package config

// Application constants
const (
	// Application Info
	AppName = "microreport"

	// EnvPrefix namespaces every environment variable, e.g. MICROREPORT_INPUT_ROOT
	EnvPrefix = "MICROREPORT"

	// DefaultConfigFile is looked up in the working directory
	DefaultConfigFile = "microreport.yaml"

	// Naming convention. {id} is replaced by the sample identifier.
	DefaultReportPattern = "sample{id}.{id}.report.json"
	IDPlaceholder        = "{id}"

	// Results layout
	DefaultResultsDir = "Results"
	DefaultTablesDir  = "Tables"
	DefaultPlotsDir   = "Plots"
	StagingDirName    = ".staging"
	DefaultErrorLog   = "processing_errors.log"
	ManifestFileName  = "manifest.json"
	MetricsFileName   = "metrics.prom"
	DefaultTraceFile  = "trace.json"

	// Tables
	MicroorganismsTableFile = "Microorganisms_table.xlsx"
	AMRMarkersTableFile     = "amrMarkers_table.xlsx"
	TableSheetName          = "Sheet_1"

	// Plots
	PresencePlotFile        = "predictedPresent.jpg"
	ClassPlotFile           = "class.jpg"
	AbundancePlotFilePrefix = "normalised_relativeAbundance_"
	PlotFileExtension       = ".jpg"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// AbundancePlotFile returns the chart filename for one sample
func AbundancePlotFile(sample string) string {
	return AbundancePlotFilePrefix + sample + PlotFileExtension
}
