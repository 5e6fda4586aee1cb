package agentcore

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsbedrock"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsevents"
	"github.com/aws/aws-cdk-go/awscdk/v2/awseventstargets"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsopensearchserverless"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/plexusone/bedrock-agentcore-cdk/config"
	"github.com/plexusone/bedrock-agentcore-cdk/defaults"
	"github.com/plexusone/bedrock-agentcore-cdk/validation"
)

const (
	bedrockPrincipal    = "bedrock.amazonaws.com"
	maxCollectionName   = 32
	collectionType      = "VECTORSEARCH"
	storageType         = "OPENSEARCH_SERVERLESS"
	chunkingFixedSize   = "FIXED_SIZE"
	dataSourceTypeS3    = "S3"
	knowledgeBaseVector = "VECTOR"
)

var invalidCollectionChars = regexp.MustCompile(`[^a-z0-9-]+`)

// KnowledgeBase is a Bedrock knowledge base over documents in S3, indexed into
// an OpenSearch Serverless vector collection.
type KnowledgeBase struct {
	constructs.Construct

	// Props are the caller props with field defaults applied.
	Props config.KnowledgeBaseProps

	Base        defaults.ResolvedBase
	Security    defaults.SecurityConfig
	VectorStore config.VectorStoreConfig
	Chunking    config.ChunkingStrategy

	Role awsiam.Role

	// Collection is nil when the knowledge base uses an existing collection.
	Collection    awsopensearchserverless.CfnCollection
	Index         awsopensearchserverless.CfnIndex
	CollectionArn *string

	Resource   awsbedrock.CfnKnowledgeBase
	DataSource awsbedrock.CfnDataSource

	// SyncRule starts ingestion on a schedule. Nil when no interval is set.
	SyncRule awsevents.Rule

	KnowledgeBaseID  *string
	KnowledgeBaseArn *string
	DataSourceID     *string

	bucket awss3.IBucket
}

// NewKnowledgeBase validates props and declares the knowledge base, its vector
// store, S3 data source and optional ingestion schedule.
func NewKnowledgeBase(scope constructs.Construct, id string, props config.KnowledgeBaseProps, opts ...Option) (*KnowledgeBase, error) {
	o := newOptions(opts)
	if !o.validated {
		if err := enforce(scope, props.Name, validation.ValidateKnowledgeBase(props)); err != nil {
			return nil, err
		}
	}

	if props.EmbeddingModelID == "" {
		props.EmbeddingModelID = config.DefaultEmbeddingModelID
	}
	base := defaults.ApplyBaseDefaults(props.BaseProps)

	kb := &KnowledgeBase{
		Construct:   constructs.NewConstruct(scope, jsii.String(id)),
		Props:       props,
		Base:        base,
		Security:    defaults.GetSecurityConfig(base.Environment, props.Security),
		VectorStore: props.ResolvedVectorStore(),
		Chunking:    props.ResolvedChunking(),
	}

	name := defaults.GenerateResourceName(props.Name, &base.Naming)
	kb.createRole(name)
	kb.createVectorStore(name)
	kb.createKnowledgeBase(name)
	kb.createSyncSchedule()
	kb.addOutputs()

	applyTags(kb.Construct, base.Tags)
	return kb, nil
}

// MustNewKnowledgeBase is like NewKnowledgeBase but panics on error.
func MustNewKnowledgeBase(scope constructs.Construct, id string, props config.KnowledgeBaseProps, opts ...Option) *KnowledgeBase {
	kb, err := NewKnowledgeBase(scope, id, props, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create knowledge base %s: %v", id, err))
	}
	return kb
}

// GrantRetrieve lets grantee query the knowledge base.
func (kb *KnowledgeBase) GrantRetrieve(grantee awsiam.IGrantable) awsiam.Grant {
	return awsiam.Grant_AddToPrincipal(&awsiam.GrantOnPrincipalOptions{
		Grantee:      grantee,
		Actions:      jsii.Strings("bedrock:Retrieve", "bedrock:RetrieveAndGenerate"),
		ResourceArns: &[]*string{kb.KnowledgeBaseArn},
	})
}

func (kb *KnowledgeBase) embeddingModelArn() *string {
	stack := awscdk.Stack_Of(kb.Construct)
	return jsii.String(fmt.Sprintf("arn:%s:bedrock:%s::foundation-model/%s",
		*stack.Partition(), *stack.Region(), kb.Props.EmbeddingModelID))
}

func (kb *KnowledgeBase) createRole(name string) {
	kb.Role = awsiam.NewRole(kb.Construct, jsii.String("Role"), &awsiam.RoleProps{
		Description: jsii.String(fmt.Sprintf("Service role for knowledge base %s", name)),
		AssumedBy: awsiam.NewServicePrincipal(jsii.String(bedrockPrincipal), &awsiam.ServicePrincipalOpts{
			Conditions: &map[string]interface{}{
				"StringEquals": map[string]interface{}{
					"aws:SourceAccount": awscdk.Stack_Of(kb.Construct).Account(),
				},
			},
		}),
	})

	kb.Role.AddToPolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Effect:    awsiam.Effect_ALLOW,
		Actions:   jsii.Strings("bedrock:InvokeModel"),
		Resources: &[]*string{kb.embeddingModelArn()},
	}))

	kb.bucket = awss3.Bucket_FromBucketName(kb.Construct, jsii.String("SourceBucket"), jsii.String(kb.Props.Bucket))
	for _, prefix := range kb.Props.Prefixes {
		kb.bucket.GrantRead(kb.Role, jsii.String(prefix+"*"))
	}
}

// createVectorStore creates an OpenSearch Serverless collection with its
// security policies and vector index, unless an existing collection is given.
func (kb *KnowledgeBase) createVectorStore(name string) {
	vs := kb.VectorStore
	if vs.CollectionARN != "" {
		kb.CollectionArn = jsii.String(vs.CollectionARN)
		kb.grantCollectionAccess()
		return
	}

	stack := awscdk.Stack_Of(kb.Construct)
	collection := collectionName(name)
	resource := "collection/" + collection

	encryption := awsopensearchserverless.NewCfnSecurityPolicy(kb.Construct, jsii.String("EncryptionPolicy"), &awsopensearchserverless.CfnSecurityPolicyProps{
		Name: jsii.String(policyName(collection, "enc")),
		Type: jsii.String("encryption"),
		Policy: stack.ToJsonString(map[string]interface{}{
			"Rules": []interface{}{
				map[string]interface{}{"ResourceType": "collection", "Resource": []string{resource}},
			},
			"AWSOwnedKey": true,
		}, nil),
	})

	network := awsopensearchserverless.NewCfnSecurityPolicy(kb.Construct, jsii.String("NetworkPolicy"), &awsopensearchserverless.CfnSecurityPolicyProps{
		Name:   jsii.String(policyName(collection, "net")),
		Type:   jsii.String("network"),
		Policy: stack.ToJsonString(kb.networkPolicy(resource), nil),
	})

	kb.Collection = awsopensearchserverless.NewCfnCollection(kb.Construct, jsii.String("Collection"), &awsopensearchserverless.CfnCollectionProps{
		Name:            jsii.String(collection),
		Type:            jsii.String(collectionType),
		Description:     jsii.String(fmt.Sprintf("Vector store for knowledge base %s", name)),
		StandbyReplicas: jsii.String(standbyReplicas(kb.Base.Environment)),
	})
	kb.Collection.Node().AddDependency(encryption, network)
	kb.Collection.ApplyRemovalPolicy(cdkRemovalPolicy(kb.Base.RemovalPolicy), nil)
	kb.CollectionArn = kb.Collection.AttrArn()

	access := awsopensearchserverless.NewCfnAccessPolicy(kb.Construct, jsii.String("AccessPolicy"), &awsopensearchserverless.CfnAccessPolicyProps{
		Name: jsii.String(policyName(collection, "acc")),
		Type: jsii.String("data"),
		Policy: stack.ToJsonString([]interface{}{
			map[string]interface{}{
				"Rules": []interface{}{
					map[string]interface{}{
						"ResourceType": "collection",
						"Resource":     []string{resource},
						"Permission": []string{
							"aoss:CreateCollectionItems",
							"aoss:DescribeCollectionItems",
							"aoss:UpdateCollectionItems",
						},
					},
					map[string]interface{}{
						"ResourceType": "index",
						"Resource":     []string{"index/" + collection + "/*"},
						"Permission": []string{
							"aoss:CreateIndex",
							"aoss:DescribeIndex",
							"aoss:UpdateIndex",
							"aoss:ReadDocument",
							"aoss:WriteDocument",
						},
					},
				},
				"Principal": []interface{}{
					kb.Role.RoleArn(),
					fmt.Sprintf("arn:%s:iam::%s:root", *stack.Partition(), *stack.Account()),
				},
			},
		}, nil),
	})

	kb.Index = awsopensearchserverless.NewCfnIndex(kb.Construct, jsii.String("VectorIndex"), &awsopensearchserverless.CfnIndexProps{
		CollectionEndpoint: kb.Collection.AttrCollectionEndpoint(),
		IndexName:          jsii.String(vs.IndexName),
		Settings: &awsopensearchserverless.CfnIndex_IndexSettingsProperty{
			Index: &awsopensearchserverless.CfnIndex_IndexProperty{
				Knn: jsii.Bool(true),
			},
		},
		Mappings: &awsopensearchserverless.CfnIndex_MappingsProperty{
			Properties: map[string]interface{}{
				vs.VectorField: &awsopensearchserverless.CfnIndex_PropertyMappingProperty{
					Type:      jsii.String("knn_vector"),
					Dimension: jsii.Number(float64(vs.Dimensions)),
					Method: &awsopensearchserverless.CfnIndex_MethodProperty{
						Name:      jsii.String("hnsw"),
						Engine:    jsii.String("faiss"),
						SpaceType: jsii.String("l2"),
					},
				},
				vs.TextField: &awsopensearchserverless.CfnIndex_PropertyMappingProperty{
					Type: jsii.String("text"),
				},
				vs.MetadataField: &awsopensearchserverless.CfnIndex_PropertyMappingProperty{
					Type:  jsii.String("text"),
					Index: jsii.Bool(false),
				},
			},
		},
	})
	kb.Index.Node().AddDependency(kb.Collection, access)

	kb.grantCollectionAccess()
}

func (kb *KnowledgeBase) networkPolicy(resource string) []interface{} {
	if kb.Security.RestrictPublicAccess {
		return []interface{}{
			map[string]interface{}{
				"Rules": []interface{}{
					map[string]interface{}{"ResourceType": "collection", "Resource": []string{resource}},
				},
				"AllowFromPublic": false,
				"SourceServices":  []string{bedrockPrincipal},
			},
		}
	}
	return []interface{}{
		map[string]interface{}{
			"Rules": []interface{}{
				map[string]interface{}{"ResourceType": "collection", "Resource": []string{resource}},
				map[string]interface{}{"ResourceType": "dashboard", "Resource": []string{resource}},
			},
			"AllowFromPublic": true,
		},
	}
}

func (kb *KnowledgeBase) grantCollectionAccess() {
	kb.Role.AddToPolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Effect:    awsiam.Effect_ALLOW,
		Actions:   jsii.Strings("aoss:APIAccessAll"),
		Resources: &[]*string{kb.CollectionArn},
	}))
}

func (kb *KnowledgeBase) createKnowledgeBase(name string) {
	vs := kb.VectorStore
	p := kb.Props

	kb.Resource = awsbedrock.NewCfnKnowledgeBase(kb.Construct, jsii.String("Resource"), &awsbedrock.CfnKnowledgeBaseProps{
		Name:        jsii.String(name),
		Description: jsii.String(p.Description),
		RoleArn:     kb.Role.RoleArn(),
		KnowledgeBaseConfiguration: &awsbedrock.CfnKnowledgeBase_KnowledgeBaseConfigurationProperty{
			Type: jsii.String(knowledgeBaseVector),
			VectorKnowledgeBaseConfiguration: &awsbedrock.CfnKnowledgeBase_VectorKnowledgeBaseConfigurationProperty{
				EmbeddingModelArn: kb.embeddingModelArn(),
			},
		},
		StorageConfiguration: &awsbedrock.CfnKnowledgeBase_StorageConfigurationProperty{
			Type: jsii.String(storageType),
			OpensearchServerlessConfiguration: &awsbedrock.CfnKnowledgeBase_OpenSearchServerlessConfigurationProperty{
				CollectionArn:   kb.CollectionArn,
				VectorIndexName: jsii.String(vs.IndexName),
				FieldMapping: &awsbedrock.CfnKnowledgeBase_OpenSearchServerlessFieldMappingProperty{
					VectorField:   jsii.String(vs.VectorField),
					TextField:     jsii.String(vs.TextField),
					MetadataField: jsii.String(vs.MetadataField),
				},
			},
		},
		Tags: cfnTags(kb.Base.Tags),
	})
	kb.Resource.Node().AddDependency(kb.Role)
	if kb.Index != nil {
		kb.Resource.Node().AddDependency(kb.Index)
	}
	kb.Resource.ApplyRemovalPolicy(cdkRemovalPolicy(kb.Base.RemovalPolicy), nil)

	kb.KnowledgeBaseID = kb.Resource.AttrKnowledgeBaseId()
	kb.KnowledgeBaseArn = kb.Resource.AttrKnowledgeBaseArn()

	kb.DataSource = awsbedrock.NewCfnDataSource(kb.Construct, jsii.String("DataSource"), &awsbedrock.CfnDataSourceProps{
		Name:            jsii.String(name + "-s3"),
		KnowledgeBaseId: kb.KnowledgeBaseID,
		DataSourceConfiguration: &awsbedrock.CfnDataSource_DataSourceConfigurationProperty{
			Type: jsii.String(dataSourceTypeS3),
			S3Configuration: &awsbedrock.CfnDataSource_S3DataSourceConfigurationProperty{
				BucketArn:         kb.bucket.BucketArn(),
				InclusionPrefixes: jsii.Strings(p.Prefixes...),
			},
		},
		VectorIngestionConfiguration: &awsbedrock.CfnDataSource_VectorIngestionConfigurationProperty{
			ChunkingConfiguration: &awsbedrock.CfnDataSource_ChunkingConfigurationProperty{
				ChunkingStrategy: jsii.String(chunkingFixedSize),
				FixedSizeChunkingConfiguration: &awsbedrock.CfnDataSource_FixedSizeChunkingConfigurationProperty{
					MaxTokens:         jsii.Number(float64(kb.Chunking.MaxTokens)),
					OverlapPercentage: jsii.Number(float64(kb.Chunking.OverlapPercentage)),
				},
			},
		},
	})
	kb.DataSourceID = kb.DataSource.AttrDataSourceId()
}

// createSyncSchedule starts an ingestion job every SyncIntervalMinutes.
func (kb *KnowledgeBase) createSyncSchedule() {
	minutes := kb.Props.SyncIntervalMinutes
	if minutes == 0 {
		return
	}
	kb.SyncRule = awsevents.NewRule(kb.Construct, jsii.String("SyncSchedule"), &awsevents.RuleProps{
		Description: jsii.String(fmt.Sprintf("Ingest %s every %d minutes", kb.Props.Name, minutes)),
		Schedule:    awsevents.Schedule_Rate(awscdk.Duration_Minutes(jsii.Number(float64(minutes)))),
		Targets: &[]awsevents.IRuleTarget{
			awseventstargets.NewAwsApi(&awseventstargets.AwsApiProps{
				Service: jsii.String("bedrock-agent"),
				Action:  jsii.String("startIngestionJob"),
				Parameters: map[string]interface{}{
					"knowledgeBaseId": kb.KnowledgeBaseID,
					"dataSourceId":    kb.DataSourceID,
				},
				PolicyStatement: awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
					Effect:    awsiam.Effect_ALLOW,
					Actions:   jsii.Strings("bedrock:StartIngestionJob"),
					Resources: &[]*string{kb.KnowledgeBaseArn},
				}),
			}),
		},
	})
}

func (kb *KnowledgeBase) addOutputs() {
	awscdk.NewCfnOutput(kb.Construct, jsii.String("KnowledgeBaseId"), &awscdk.CfnOutputProps{
		Value:       kb.KnowledgeBaseID,
		Description: jsii.String(fmt.Sprintf("Knowledge base ID for %s", kb.Props.Name)),
	})
	awscdk.NewCfnOutput(kb.Construct, jsii.String("DataSourceId"), &awscdk.CfnOutputProps{
		Value:       kb.DataSourceID,
		Description: jsii.String(fmt.Sprintf("Data source ID for %s", kb.Props.Name)),
	})
	awscdk.NewCfnOutput(kb.Construct, jsii.String("CollectionArn"), &awscdk.CfnOutputProps{
		Value:       kb.CollectionArn,
		Description: jsii.String(fmt.Sprintf("Vector collection ARN for %s", kb.Props.Name)),
	})
}

// collectionName derives a valid OpenSearch Serverless name: lowercase letters,
// digits and hyphens, starting with a letter, at most 32 characters.
func collectionName(name string) string {
	n := invalidCollectionChars.ReplaceAllString(strings.ToLower(name), "-")
	n = strings.Trim(n, "-")
	if n == "" || n[0] < 'a' || n[0] > 'z' {
		n = "kb-" + n
	}
	if len(n) > maxCollectionName {
		n = strings.TrimRight(n[:maxCollectionName], "-")
	}
	return n
}

// derivedCollectionName returns the collection NewKnowledgeBase creates for p,
// or false when p points at an existing collection.
func derivedCollectionName(p config.KnowledgeBaseProps) (string, bool) {
	if p.VectorStore != nil && p.VectorStore.CollectionARN != "" {
		return "", false
	}
	base := defaults.ApplyBaseDefaults(p.BaseProps)
	return collectionName(defaults.GenerateResourceName(p.Name, &base.Naming)), true
}

// policyName appends suffix to a collection name within the 32 character limit.
func policyName(collection, suffix string) string {
	limit := maxCollectionName - len(suffix) - 1
	if len(collection) > limit {
		collection = strings.TrimRight(collection[:limit], "-")
	}
	return collection + "-" + suffix
}

func standbyReplicas(env defaults.Environment) string {
	if env == defaults.EnvironmentProd {
		return "ENABLED"
	}
	return "DISABLED"
}
