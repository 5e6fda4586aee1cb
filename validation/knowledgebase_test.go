package validation

import (
	"strings"
	"testing"

	"github.com/plexusone/bedrock-agentcore-cdk/config"
	"github.com/stretchr/testify/require"
)

func validKnowledgeBaseProps() config.KnowledgeBaseProps {
	return config.KnowledgeBaseProps{
		Name:        "product-docs",
		Description: "Product manuals and FAQs",
		Instruction: "Use this knowledge base for product questions",
		Bucket:      "product-docs-bucket",
		Prefixes:    []string{"manuals/", "faq/"},
	}
}

func TestKnowledgeBaseValidator_Validate(t *testing.T) {
	testCases := map[string]struct {
		mutate func(p *config.KnowledgeBaseProps)

		wantedErrs         []string
		wantedWarningCount int
	}{
		"valid": {},
		"chunking tokens below range": {
			mutate: func(p *config.KnowledgeBaseProps) {
				p.ChunkingStrategy = &config.ChunkingStrategy{MaxTokens: 50, OverlapPercentage: 20}
			},
			wantedErrs: []string{"chunkingStrategy.maxTokens must be between 100 and 8192, got 50"},
		},
		"chunking overlap above range": {
			mutate: func(p *config.KnowledgeBaseProps) {
				p.ChunkingStrategy = &config.ChunkingStrategy{MaxTokens: 300, OverlapPercentage: 100}
			},
			wantedErrs: []string{"chunkingStrategy.overlapPercentage must be between 1 and 99, got 100"},
		},
		"no prefixes": {
			mutate:     func(p *config.KnowledgeBaseProps) { p.Prefixes = nil },
			wantedErrs: []string{"prefixes must contain at least one item"},
		},
		"empty prefix entry": {
			mutate:     func(p *config.KnowledgeBaseProps) { p.Prefixes = []string{"manuals/", ""} },
			wantedErrs: []string{"prefixes[1] is required"},
		},
		"prefix without trailing slash warns": {
			mutate:             func(p *config.KnowledgeBaseProps) { p.Prefixes = []string{"manuals"} },
			wantedWarningCount: 1,
		},
		"short description": {
			mutate:     func(p *config.KnowledgeBaseProps) { p.Description = "docs" },
			wantedErrs: []string{"description must be at least 10 characters long, got 4"},
		},
		"long description": {
			mutate:     func(p *config.KnowledgeBaseProps) { p.Description = strings.Repeat("d", 1001) },
			wantedErrs: []string{"description must be at most 1000 characters long, got 1001"},
		},
		"missing instruction": {
			mutate:     func(p *config.KnowledgeBaseProps) { p.Instruction = "" },
			wantedErrs: []string{"instruction is required"},
		},
		"sync interval too long": {
			mutate:     func(p *config.KnowledgeBaseProps) { p.SyncIntervalMinutes = 1441 },
			wantedErrs: []string{"syncIntervalMinutes must be between 1 and 1440, got 1441"},
		},
		"daily sync": {
			mutate: func(p *config.KnowledgeBaseProps) { p.SyncIntervalMinutes = 1440 },
		},
		"bad collection arn": {
			mutate: func(p *config.KnowledgeBaseProps) {
				p.VectorStore = &config.VectorStoreConfig{CollectionARN: "collection/abc"}
			},
			wantedErrs: []string{`vectorStore.collectionArn "collection/abc" is invalid: must contain only an OpenSearch Serverless collection ARN`},
		},
		"existing collection": {
			mutate: func(p *config.KnowledgeBaseProps) {
				p.VectorStore = &config.VectorStoreConfig{CollectionARN: "arn:aws:aoss:us-east-1:123456789012:collection/abc123"}
			},
		},
		"missing bucket": {
			mutate:     func(p *config.KnowledgeBaseProps) { p.Bucket = "" },
			wantedErrs: []string{"s3Bucket is required"},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			props := validKnowledgeBaseProps()
			if tc.mutate != nil {
				tc.mutate(&props)
			}

			got := ValidateKnowledgeBase(props)

			require.Equal(t, tc.wantedErrs, got.Errors)
			require.Len(t, got.Warnings, tc.wantedWarningCount)
		})
	}
}
