package validation

import (
	"fmt"

	"github.com/plexusone/bedrock-agentcore-cdk/config"
)

const (
	minKBDescriptionLength = 10
	maxKBDescriptionLength = 1000
	minSyncIntervalMinutes = 1
	maxSyncIntervalMinutes = 1440
	minChunkMaxTokens      = 100
	maxChunkMaxTokens      = 8192
	minChunkOverlap        = 1
	maxChunkOverlap        = 99
)

// KnowledgeBaseValidator validates KnowledgeBaseProps. It holds no state.
type KnowledgeBaseValidator struct{}

// Validate checks every field of p.
func (KnowledgeBaseValidator) Validate(p config.KnowledgeBaseProps) Result {
	var c Collector

	c.Merge(ResourceName(p.Name, "name"))
	if p.Name != "" && p.Naming != nil {
		c.Merge(generatedName(p.Name, p.Naming, "name"))
	}

	if c.Merge(Required(p.Description, "description")) {
		c.Merge(Length(p.Description, minKBDescriptionLength, maxKBDescriptionLength, "description"))
	}
	if c.Merge(Required(p.Instruction, "instruction")) {
		c.Merge(MinLength(p.Instruction, minInstructionLength, "instruction"))
	}

	c.Merge(BucketName(p.Bucket, "s3Bucket"))
	if c.Merge(NonEmpty(p.Prefixes, "prefixes")) {
		for i, prefix := range p.Prefixes {
			field := fmt.Sprintf("prefixes[%d]", i)
			if c.Merge(Required(prefix, field)) {
				c.Merge(PathPrefix(prefix, field))
			}
		}
	}

	if p.SyncIntervalMinutes != 0 {
		c.Merge(Range(p.SyncIntervalMinutes, minSyncIntervalMinutes, maxSyncIntervalMinutes, "syncIntervalMinutes"))
	}
	if cs := p.ChunkingStrategy; cs != nil {
		c.Merge(Range(cs.MaxTokens, minChunkMaxTokens, maxChunkMaxTokens, "chunkingStrategy.maxTokens"))
		c.Merge(Range(cs.OverlapPercentage, minChunkOverlap, maxChunkOverlap, "chunkingStrategy.overlapPercentage"))
	}
	if vs := p.VectorStore; vs != nil && vs.CollectionARN != "" {
		c.Merge(Pattern(vs.CollectionARN, collectionARN, "vectorStore.collectionArn", "an OpenSearch Serverless collection ARN"))
	}

	c.Merge(baseProps(p.BaseProps))
	return c.Result()
}

// ValidateKnowledgeBase validates p.
func ValidateKnowledgeBase(p config.KnowledgeBaseProps) Result {
	return KnowledgeBaseValidator{}.Validate(p)
}
