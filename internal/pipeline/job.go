package pipeline

import (
	"fmt"
	"path"
	"strings"

	"github.com/seenimoa/finratios/internal/config"
	"github.com/seenimoa/finratios/internal/sink"
	"github.com/seenimoa/finratios/pkg/models"
	"github.com/seenimoa/finratios/pkg/utils"
)

// Job is one ratio run for a company and fiscal year.
type Job struct {
	Company    string
	Year       int
	Statements map[models.StatementType]string // identifiers per statement
	Mode       sink.Mode
	DryRun     bool // compute but do not write
}

// Validate checks that the job names a company, a four digit year and an
// identifier for every statement.
func (j Job) Validate() error {
	if !utils.IsValidCompany(j.Company) {
		return fmt.Errorf("company is required")
	}
	if j.Year < 1000 || j.Year > 9999 {
		return fmt.Errorf("year %d is not a four digit year", j.Year)
	}
	for _, t := range models.StatementTypes {
		if strings.TrimSpace(j.Statements[t]) == "" {
			return fmt.Errorf("no %s statement identifier", t.Label())
		}
	}
	if _, err := sink.ParseMode(string(j.Mode)); err != nil {
		return err
	}
	return nil
}

// CompanyPlaceholder in a base path expands to the lowercase company slug.
const CompanyPlaceholder = "{company}"

// StatementID returns the default identifier of statement t:
// <basePath>/<COMPANY>_<PL|BS|CF>.<ext>.
func StatementID(basePath, ext, company string, t models.StatementType) string {
	company = utils.NormalizeCompany(company)
	base := strings.ReplaceAll(basePath, CompanyPlaceholder, utils.CompanySlug(company))
	name := fmt.Sprintf("%s_%s.%s", company, strings.ToUpper(t.Prefix()), strings.TrimPrefix(ext, "."))
	if base == "" {
		return name
	}
	if strings.Contains(base, "://") {
		return strings.TrimSuffix(base, "/") + "/" + name
	}
	return path.Join(base, name)
}

// ResolveStatements fills in default identifiers for statements absent from
// explicit. explicit is keyed by statement prefix ("pl", "bs", "cf").
func ResolveStatements(cfg config.PipelineConfig, company string, explicit map[string]string) map[models.StatementType]string {
	out := make(map[models.StatementType]string, len(models.StatementTypes))
	for _, t := range models.StatementTypes {
		if id := strings.TrimSpace(explicit[t.Prefix()]); id != "" {
			out[t] = id
			continue
		}
		if id := strings.TrimSpace(cfg.Statements[t.Prefix()]); id != "" {
			out[t] = id
			continue
		}
		out[t] = StatementID(cfg.BasePath, cfg.Extension, company, t)
	}
	return out
}

// JobFromConfig builds the job the configuration describes.
func JobFromConfig(cfg *config.Config) (Job, error) {
	mode, err := sink.ParseMode(cfg.Sink.Mode)
	if err != nil {
		return Job{}, err
	}
	company := utils.NormalizeCompany(cfg.Pipeline.Company)
	return Job{
		Company:    company,
		Year:       cfg.Pipeline.Year,
		Statements: ResolveStatements(cfg.Pipeline, company, nil),
		Mode:       mode,
	}, nil
}
