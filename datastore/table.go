package datastore

const (
	TableGuardConclusions = "guard_conclusions"
	TableEvalResults      = "eval_results"
)

const (
	SchemaPublic = "public"
)
