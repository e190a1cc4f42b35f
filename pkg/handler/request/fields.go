package request

// BiomeRelation is the trailing segment of /v1/biomes/{lineage}/{relation}.
type BiomeRelation int

const (
	BiomeRelationChildren BiomeRelation = iota
	BiomeRelationDescendants
	BiomeRelationSamples
	BiomeRelationStudies
	BiomeRelationUnknown
)

func (s BiomeRelation) String() string {
	switch s {
	case BiomeRelationChildren:
		return "children"
	case BiomeRelationDescendants:
		return "descendants"
	case BiomeRelationSamples:
		return "samples"
	case BiomeRelationStudies:
		return "studies"
	default:
		return "unknown"
	}
}

func NewBiomeRelation(field string) BiomeRelation {
	switch field {
	case "children":
		return BiomeRelationChildren
	case "descendants":
		return BiomeRelationDescendants
	case "samples":
		return BiomeRelationSamples
	case "studies":
		return BiomeRelationStudies
	default:
		return BiomeRelationUnknown
	}
}
