package embedding

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const DefaultBedrockModelID = "amazon.titan-embed-text-v2:0"

// InvokeModelAPI is the part of the Bedrock runtime client the embedder uses.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type BedrockEmbedder struct {
	client     InvokeModelAPI
	modelID    string
	dimensions int
}

// Titan embedding request format
type titanEmbeddingRequest struct {
	InputText  string `json:"inputText"`
	Dimensions int    `json:"dimensions,omitempty"`
	Normalize  bool   `json:"normalize"`
}

type titanEmbeddingResponse struct {
	Embedding           []float32 `json:"embedding"`
	InputTextTokenCount int       `json:"inputTextTokenCount"`
}

func NewBedrockEmbedder(client InvokeModelAPI, modelID string, dimensions int) *BedrockEmbedder {
	if modelID == "" {
		modelID = DefaultBedrockModelID
	}

	return &BedrockEmbedder{
		client:     client,
		modelID:    modelID,
		dimensions: dimensions,
	}
}

// NewBedrockClient loads the default AWS credential chain for region.
func NewBedrockClient(ctx context.Context, region string) (*bedrockruntime.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return bedrockruntime.NewFromConfig(cfg), nil
}

func (e *BedrockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := titanEmbeddingRequest{
		InputText:  text,
		Dimensions: e.dimensions,
		Normalize:  true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	output, err := e.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(e.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke model %s: %w", e.modelID, err)
	}

	var response titanEmbeddingResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bedrock response: %w", err)
	}

	if len(response.Embedding) == 0 {
		return nil, fmt.Errorf("bedrock returned an empty embedding")
	}

	return response.Embedding, nil
}
