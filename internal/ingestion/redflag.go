package ingestion

import (
	"strings"

	"jobmate/jobboard-service/internal/model"
)

// ContainsRedFlag returns true if any red flag term appears (case-insensitive)
// anywhere in the combined title, company and description of job.
func ContainsRedFlag(job model.RawJob, redFlags []string) bool {
	if len(redFlags) == 0 {
		return false
	}
	combined := strings.ToLower(job.Title + " " + job.Company + " " + job.Description)
	for _, flag := range redFlags {
		flag = strings.TrimSpace(flag)
		if flag == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(flag)) {
			return true
		}
	}
	return false
}
