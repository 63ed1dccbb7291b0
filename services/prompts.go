package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/vaibhavvyavahare/railtrace/models"
)

func installationStatuses(records []models.InstallationRecord) []string {
	return lo.Map(records, func(r models.InstallationRecord, _ int) string { return r.Status })
}

func maintenanceStatuses(records []models.MaintenanceRecord) []string {
	return lo.Map(records, func(r models.MaintenanceRecord, _ int) string { return r.Status })
}

// statusBreakdown renders "- status: count" lines in first-seen order
func statusBreakdown(statuses []string) string {
	normalized := lo.Map(statuses, func(s string, _ int) string {
		if s == "" {
			return "unknown"
		}
		return s
	})
	counts := lo.CountValues(normalized)
	lines := lo.Map(lo.Uniq(normalized), func(s string, _ int) string {
		return fmt.Sprintf("- %s: %d", s, counts[s])
	})
	return strings.Join(lines, "\n")
}

// commonIssues renders the ten most frequent issue descriptions
func commonIssues(records []models.MaintenanceRecord) string {
	issues := lo.Map(records, func(r models.MaintenanceRecord, _ int) string {
		if r.IssueDescription == "" {
			return "unknown"
		}
		return strings.ToLower(r.IssueDescription)
	})
	counts := lo.CountValues(issues)
	ordered := lo.Uniq(issues)
	sort.SliceStable(ordered, func(i, j int) bool { return counts[ordered[i]] > counts[ordered[j]] })

	lines := lo.Map(lo.Subset(ordered, 0, 10), func(issue string, _ int) string {
		return fmt.Sprintf("- %s: %d occurrences", issue, counts[issue])
	})
	return strings.Join(lines, "\n")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func vendorPrompt(s *VendorScope) string {
	recentInstalls := lo.Map(lo.Subset(s.Installations, 0, 10), func(i models.InstallationRecord, _ int) string {
		return fmt.Sprintf("%s: %s (%s)", i.FittingID, i.Status, formatTime(i.InstalledAt))
	})
	recentMaint := lo.Map(lo.Subset(s.Maintenances, 0, 10), func(m models.MaintenanceRecord, _ int) string {
		return fmt.Sprintf("%s: %s - %s", m.FittingID, m.Status, m.IssueDescription)
	})

	return fmt.Sprintf(`Analyze the performance data for vendor %s (ID: %s):

VENDOR STATISTICS:
- Total Lots: %d
- Total Batches: %d
- Total Fittings: %d
- Total Installations: %d
- Total Maintenance Records: %d

INSTALLATION STATUS BREAKDOWN:
%s

MAINTENANCE STATUS BREAKDOWN:
%s

RECENT ACTIVITY (Last 10):
- Recent Installations: %s
- Recent Maintenance: %s

Please provide a comprehensive analysis including:
1. Performance trends and quality indicators
2. Risk assessment and potential issues
3. Recommendations for improvement
4. Priority alerts for immediate attention

Format your response as JSON with: {"summary": "...", "trends": "...", "risks": "...", "recommendations": [...], "alerts": [{"severity": "high/medium/low", "message": "...", "action": "..."}]}`,
		s.Vendor.VendorName, s.Vendor.VendorID,
		len(s.Lots), len(s.Batches), len(s.Fittings), len(s.Installations), len(s.Maintenances),
		statusBreakdown(installationStatuses(s.Installations)),
		statusBreakdown(maintenanceStatuses(s.Maintenances)),
		strings.Join(recentInstalls, ", "),
		strings.Join(recentMaint, ", "),
	)
}

func batchPrompt(s *BatchScope) string {
	vendorName, componentType := "Unknown", "Unknown"
	if s.Vendor != nil {
		vendorName = s.Vendor.VendorName
	}
	if s.Order != nil {
		componentType = s.Order.ComponentType
	}

	return fmt.Sprintf(`Analyze the performance data for batch %s:

BATCH DETAILS:
- Batch ID: %s
- Lot ID: %s
- Vendor: %s
- Component Type: %s
- Total Items: %d

INSTALLATION DATA:
%s

MAINTENANCE DATA:
%s

Please provide analysis including:
1. Quality assessment
2. Installation success rate
3. Maintenance frequency and issues
4. Performance predictions
5. Recommendations

Format as JSON: {"summary": "...", "quality_score": "1-10", "issues": [...], "recommendations": [...], "alerts": [...]}`,
		s.Batch.BatchID, s.Batch.BatchID, s.Batch.LotID, vendorName, componentType, len(s.Fittings),
		statusBreakdown(installationStatuses(s.Installations)),
		statusBreakdown(maintenanceStatuses(s.Maintenances)),
	)
}

func lotPrompt(s *LotScope) string {
	vendorName := "Unknown"
	if s.Vendor != nil {
		vendorName = s.Vendor.VendorName
	}
	perBatch := lo.CountValuesBy(s.Fittings, func(f models.Fitting) string { return f.BatchID })
	batchLines := lo.Map(s.Batches, func(b models.Batch, _ int) string {
		return fmt.Sprintf("- %s: %d items", b.BatchID, perBatch[b.BatchID])
	})

	return fmt.Sprintf(`Analyze the performance data for lot %s:

LOT DETAILS:
- Lot ID: %s
- Vendor: %s
- Created: %s
- Total Batches: %d
- Total Fittings: %d

BATCH BREAKDOWN:
%s

INSTALLATION & MAINTENANCE:
%s
%s

Provide analysis including lot performance, batch comparison, and overall quality assessment.

Format as JSON: {"summary": "...", "performance": "...", "batch_analysis": [...], "recommendations": [...]}`,
		s.Lot.LotID, s.Lot.LotID, vendorName, formatTime(s.Lot.CreatedAt), len(s.Batches), len(s.Fittings),
		strings.Join(batchLines, "\n"),
		statusBreakdown(installationStatuses(s.Installations)),
		statusBreakdown(maintenanceStatuses(s.Maintenances)),
	)
}

func performancePrompt(s *SystemSnapshot) string {
	lotVendor := lo.SliceToMap(s.Lots, func(l models.Lot) (string, string) { return l.LotID, l.VendorID })
	batchVendor := lo.SliceToMap(s.Batches, func(b models.Batch) (string, string) { return b.BatchID, lotVendor[b.LotID] })

	lotsPerVendor := lo.CountValuesBy(s.Lots, func(l models.Lot) string { return l.VendorID })
	batchesPerVendor := lo.CountValuesBy(s.Batches, func(b models.Batch) string { return lotVendor[b.LotID] })
	fittingsPerVendor := lo.CountValuesBy(s.Fittings, func(f models.Fitting) string { return batchVendor[f.BatchID] })

	vendorLines := lo.Map(s.Vendors, func(v models.Vendor, _ int) string {
		return fmt.Sprintf("- %s: %d lots, %d batches, %d fittings",
			v.VendorName, lotsPerVendor[v.VendorID], batchesPerVendor[v.VendorID], fittingsPerVendor[v.VendorID])
	})
	orderStatuses := lo.Map(s.Orders, func(o models.Order, _ int) string { return o.Status })

	return fmt.Sprintf(`Generate a comprehensive performance report for the entire RailTrace system:

SYSTEM OVERVIEW:
- Total Vendors: %d
- Total Orders: %d
- Total Lots: %d
- Total Batches: %d
- Total Fittings: %d
- Total Installations: %d
- Total Maintenance Records: %d

ORDER STATUS BREAKDOWN:
%s

INSTALLATION STATUS BREAKDOWN:
%s

MAINTENANCE STATUS BREAKDOWN:
%s

VENDOR PERFORMANCE:
%s

Provide a comprehensive system analysis including:
1. Overall system health and performance
2. Vendor performance comparison
3. Quality trends and patterns
4. Risk assessment and critical issues
5. Strategic recommendations
6. Priority action items

Format as JSON: {"executive_summary": "...", "system_health": "...", "vendor_performance": [...], "critical_issues": [...], "recommendations": [...], "action_items": [...]}`,
		len(s.Vendors), len(s.Orders), len(s.Lots), len(s.Batches), len(s.Fittings), len(s.Installations), len(s.Maintenances),
		statusBreakdown(orderStatuses),
		statusBreakdown(installationStatuses(s.Installations)),
		statusBreakdown(maintenanceStatuses(s.Maintenances)),
		strings.Join(vendorLines, "\n"),
	)
}

func maintenanceAlertsPrompt(views []MaintenanceView) string {
	records := lo.Map(views, func(v MaintenanceView, _ int) models.MaintenanceRecord { return v.MaintenanceRecord })
	recent := lo.Map(lo.Subset(records, 0, 20), func(m models.MaintenanceRecord, _ int) string {
		return fmt.Sprintf("- %s: %s - %s (%s)", m.FittingID, m.Status, m.IssueDescription, formatTime(m.ReportedAt))
	})

	return fmt.Sprintf(`Analyze maintenance records to generate alerts and predictions:

MAINTENANCE OVERVIEW:
- Total Records: %d
- Status Breakdown: %s

RECENT MAINTENANCE (Last 20):
%s

COMMON ISSUES:
%s

Generate maintenance alerts including:
1. High-priority unresolved issues
2. Patterns in recurring problems
3. Predictive maintenance recommendations
4. Vendor performance issues
5. Component failure trends

Format as JSON: {"critical_alerts": [...], "predictive_alerts": [...], "vendor_issues": [...], "recommendations": [...]}`,
		len(records),
		statusBreakdown(maintenanceStatuses(records)),
		strings.Join(recent, "\n"),
		commonIssues(records),
	)
}

// summaryCounts is the short count-based prompt used for stored summaries
type summaryCounts struct {
	Vendor        *models.Vendor
	Lots          int
	Batches       int
	Fittings      int
	Installations int
	Maintenances  int
}

func summaryPrompt(c summaryCounts) string {
	return strings.Join([]string{
		fmt.Sprintf("Vendor: %s - %s", c.Vendor.VendorID, c.Vendor.VendorName),
		fmt.Sprintf("Lots: %d, Batches: %d, Fittings: %d", c.Lots, c.Batches, c.Fittings),
		fmt.Sprintf("Installations: %d, Maintenance Reports: %d", c.Installations, c.Maintenances),
	}, "\n")
}
