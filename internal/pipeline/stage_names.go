package pipeline

// StageName is a strongly-typed identifier for a run stage. All canonical
// stages are declared as constants here for compile-time safety.
type StageName string

// Canonical stage names, in execution order.
const (
	StageLoadConfig StageName = "load_config"
	StageScanInput  StageName = "scan_input"
	StageValidate   StageName = "validate"
	StageAssemble   StageName = "assemble"
	StageNavigation StageName = "navigation"
	StageSynthesize StageName = "synthesize_descriptor"
)

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}
