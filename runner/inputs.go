package runner

import (
	"fmt"
	"strings"

	"github.com/giygas/clerkship-tools/config"
	"github.com/giygas/clerkship-tools/entities"
	"github.com/giygas/clerkship-tools/inputs"
	"github.com/giygas/clerkship-tools/jsontree"
	"github.com/giygas/clerkship-tools/logging"
)

// Inputs are the read-only data of a sync run
type Inputs struct {
	List        entities.PresentationList
	Clinical    *jsontree.Node
	NonClinical *jsontree.Node
	Schema      entities.SymptomSchema
}

// Resources returns the input files named by the configuration
func Resources(cfg *config.Config) (list, clinical, nonClinical, schema inputs.Resource) {
	list = inputs.Resource{Name: "presentation list", Path: cfg.PresentationListPath, EnvVar: "PRESENTATION_LIST_PATH"}
	clinical = inputs.Resource{Name: "clinical etiology index", Path: cfg.ClinicalIndexPath, EnvVar: "CLINICAL_INDEX_PATH"}
	nonClinical = inputs.Resource{Name: "non-clinical etiology index", Path: cfg.NonClinicalIndexPath, EnvVar: "NONCLINICAL_INDEX_PATH"}
	schema = inputs.Resource{Name: "symptom schema", Path: cfg.SchemaPath, EnvVar: "SCHEMA_PATH"}
	return list, clinical, nonClinical, schema
}

// LoadInputs reads every input of a sync run. Any failure is fatal. The
// non-clinical index is optional; without it every non-clinical presentation
// ends up with no index match.
func LoadInputs(cfg *config.Config) (*Inputs, error) {
	listRes, clinicalRes, nonClinicalRes, schemaRes := Resources(cfg)

	list, err := inputs.LoadPresentationList(listRes, cfg.DataDirs)
	if err != nil {
		return nil, fmt.Errorf("failed to load presentation list: %w", err)
	}

	clinical, err := inputs.LoadIndex(clinicalRes, cfg.DataDirs)
	if err != nil {
		return nil, fmt.Errorf("failed to load clinical index: %w", err)
	}

	nonClinical := jsontree.NewObject()
	if strings.TrimSpace(nonClinicalRes.Path) != "" {
		nonClinical, err = inputs.LoadIndex(nonClinicalRes, cfg.DataDirs)
		if err != nil {
			return nil, fmt.Errorf("failed to load non-clinical index: %w", err)
		}
	} else {
		logging.Warn("No non-clinical index configured, non-clinical presentations will have no index match")
	}

	schema, err := inputs.LoadSymptomSchema(schemaRes, cfg.DataDirs)
	if err != nil {
		return nil, fmt.Errorf("failed to load symptom schema: %w", err)
	}

	return &Inputs{
		List:        list,
		Clinical:    clinical,
		NonClinical: nonClinical,
		Schema:      schema,
	}, nil
}
