package ollama

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"

	"github.com/finsight-ai/finsight/pkg/ai"
)

// Client implements ai.Client using Ollama as the backend, for running the
// extraction and query pipeline against locally-hosted models.
type Client struct {
	chatModel       string
	extractionModel string
	embeddingModel  string
	embedDim        int
	timeoutMin      int

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	Client *api.Client
}

// NewClientParams contains configuration options for creating a new Client.
type NewClientParams struct {
	ChatModel       string
	ExtractionModel string
	EmbeddingModel  string
	EmbedDim        int
	TimeoutMin      int

	BaseURL string

	MaxConcurrentRequests int64
}

// NewClient creates a new Ollama-based AI client. It connects to the Ollama
// server at the given BaseURL, or the default local server if empty.
func NewClient(params NewClientParams) (*Client, error) {
	var (
		u   *url.URL
		err error
	)
	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	cli := api.NewClient(u, http.DefaultClient)

	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	timeoutMin := params.TimeoutMin
	if timeoutMin <= 0 {
		timeoutMin = 10
	}
	embedDim := params.EmbedDim
	if embedDim <= 0 {
		embedDim = 1024
	}

	return &Client{
		chatModel:       params.ChatModel,
		extractionModel: params.ExtractionModel,
		embeddingModel:  params.EmbeddingModel,
		embedDim:        embedDim,
		timeoutMin:      timeoutMin,

		reqLock: semaphore.NewWeighted(maxConcurrent),

		Client: cli,
	}, nil
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
