package models

// AllModels lists every persistent model in dependency order
func AllModels() []interface{} {
	return []interface{}{
		&Vendor{},
		&Officer{},
		&Worker{},
		&Order{},
		&Lot{},
		&Batch{},
		&Fitting{},
		&InstallationRecord{},
		&MaintenanceRecord{},
		&File{},
		&SummaryReport{},
		&MaintenanceAlert{},
	}
}
