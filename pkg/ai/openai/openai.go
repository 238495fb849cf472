package openai

import (
	"sync"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"

	"github.com/finsight-ai/finsight/pkg/ai"
)

// Client implements ai.Client against the OpenAI API. It manages separate
// underlying clients for chat and embedding endpoints so the two capabilities
// can point at different deployments.
//
// A Client should be created using NewClient.
type Client struct {
	chatModel       string
	extractionModel string
	embeddingModel  string
	embedDim        int
	timeoutMin      int

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient      *openai.Client
	EmbeddingClient *openai.Client
}

// NewClientParams defines the configuration parameters for creating a Client.
type NewClientParams struct {
	ChatModel       string
	ExtractionModel string
	EmbeddingModel  string
	EmbedDim        int
	TimeoutMin      int

	BaseURL string
	APIKey  string

	MaxConcurrentRequests int64
}

// NewClient creates a Client configured with the provided parameters.
func NewClient(params NewClientParams) *Client {
	options := []option.RequestOption{
		option.WithAPIKey(params.APIKey),
	}
	if params.BaseURL != "" {
		options = append(options, option.WithBaseURL(params.BaseURL))
	}
	client := openai.NewClient(options...)

	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	timeoutMin := params.TimeoutMin
	if timeoutMin <= 0 {
		timeoutMin = 5
	}
	embedDim := params.EmbedDim
	if embedDim <= 0 {
		embedDim = 1536
	}

	return &Client{
		chatModel:       params.ChatModel,
		extractionModel: params.ExtractionModel,
		embeddingModel:  params.EmbeddingModel,
		embedDim:        embedDim,
		timeoutMin:      timeoutMin,

		reqLock: semaphore.NewWeighted(maxConcurrent),

		ChatClient:      &client,
		EmbeddingClient: &client,
	}
}

func (c *Client) modifyMetrics(delta ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += delta.InputTokens
	c.metrics.OutputTokens += delta.OutputTokens
	c.metrics.TotalTokens += delta.TotalTokens
	c.metrics.DurationMs += delta.DurationMs
}

// Metrics returns the accumulated model metrics for this client.
func (c *Client) Metrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}
