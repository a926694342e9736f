package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldProjectID    = "project_id"
	FieldWorkerID     = "worker_id"
	FieldImporterID   = "importer_id"
	FieldAssignmentID = "assignment_id"
	FieldPaymentID    = "payment_id"
	FieldEntityType   = "entity_type"
	FieldEntityID     = "entity_id"
	FieldAmount       = "amount"
	FieldDate         = "date"
	FieldPath         = "path"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentLedger   = "ledger"
	ComponentStorage  = "storage"
	ComponentRollup   = "rollup"
	ComponentResolver = "resolver"
	ComponentExport   = "export"
	ComponentCLI      = "cli"
)

// Operations defines standard operation names
const (
	OpCreate  = "create"
	OpRename  = "rename"
	OpDelete  = "delete"
	OpList    = "list"
	OpRecalc  = "recalc"
	OpResolve = "resolve"
	OpExport  = "export"
)
