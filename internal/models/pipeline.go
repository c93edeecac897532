package models

// Pipeline is the identity of a versioned processing graph registered with
// the service (spec.md §3). Once created it is immutable within this core —
// there is no update operation.
type Pipeline struct {
	Name    string `json:"name" example:"cram_to_bam" doc:"Globally unique pipeline name; the primary business key."`
	URI     string `json:"uri,omitempty" example:"https://github.com/wtsi-npg/cram_to_bam" doc:"Repository URI for this pipeline's code. Required on create."`
	Version string `json:"version,omitempty" example:"1.4.0" doc:"Pipeline version string. Required on create."`
}

// PipelineFilter holds the AND-combined equality filters list_pipelines
// accepts (spec.md §4.3).
type PipelineFilter struct {
	Name    string
	URI     string
	Version string
}
