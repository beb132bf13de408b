package dataprocessing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"microreport/pkg/contracts/domain"
)

const fullReport = `{
  "targetReport": {
    "microorganisms": [
      {
        "name": "Escherichia coli",
        "class": "Bacteria",
        "alignedReadCount": 300,
        "ani": 99.456,
        "rpkm": 12.346,
        "phenotypicGroup": "Gram negative",
        "explifyInterpretation": {"predictedPresent": true}
      },
      {
        "name": "Klebsiella pneumoniae",
        "class": "Bacteria",
        "alignedReadCount": 100,
        "ani": 98.1,
        "rpkm": 3.005,
        "explifyInterpretation": {"predictedPresent": true}
      },
      {
        "name": "Candida albicans",
        "class": "Fungi",
        "alignedReadCount": 7,
        "ani": 95,
        "rpkm": 0.5,
        "explifyInterpretation": {"predictedPresent": false}
      }
    ],
    "amrMarkers": [
      {
        "name": "blaCTX-M-15",
        "class": "Beta-lactam",
        "geneFamily": "CTX-M",
        "coverage": 97.777,
        "medianDepth": 14.5,
        "associatedMicroorganisms": {"all": ["Escherichia coli", "Klebsiella pneumoniae"]},
        "explifyInterpretation": {"predictedPresent": true}
      },
      {
        "name": "tetA",
        "coverage": 50,
        "medianDepth": 3
      }
    ]
  }
}`

// writeReport writes content as the report of sample id under dir
func writeReport(t *testing.T, dir, id, content string) domain.Sample {
	t.Helper()
	sampleDir := filepath.Join(dir, "sample"+id)
	require.NoError(t, os.MkdirAll(sampleDir, 0755))
	path := filepath.Join(sampleDir, "sample"+id+"."+id+".report.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return domain.Sample{
		ID:         id,
		Name:       domain.SampleName(id),
		Dir:        sampleDir,
		ReportPath: path,
	}
}
