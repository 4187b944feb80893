// Package dataset loads benchmark questions.
//
// Questions come from the Hugging Face datasets-server rows API, which
// exposes hub datasets over plain HTTP without requiring a local datasets
// toolchain. A built-in toy question set supports pipeline testing without
// network access.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hle-eval/hle/internal/api"
)

const (
	// DefaultEndpoint is the public datasets-server instance.
	DefaultEndpoint = "https://datasets-server.huggingface.co"

	// pageSize is the rows-per-request page length; 100 is the API's
	// maximum.
	pageSize = 100

	// datasetConfig and datasetSplit identify the benchmark subset.
	datasetConfig = "default"
	datasetSplit  = "test"
)

// rowsResponse mirrors the datasets-server /rows response envelope.
type rowsResponse struct {
	Rows []struct {
		RowIdx int             `json:"row_idx"`
		Row    json.RawMessage `json:"row"`
	} `json:"rows"`
	NumRowsTotal int `json:"num_rows_total"`
}

// Loader fetches questions from a datasets-server instance.
type Loader struct {
	endpoint   string
	httpClient *http.Client
}

// NewLoader creates a loader against the public datasets-server.
func NewLoader() *Loader {
	return NewLoaderWithEndpoint(DefaultEndpoint)
}

// NewLoaderWithEndpoint creates a loader against a specific
// datasets-server endpoint. Used by tests with a local fake server.
func NewLoaderWithEndpoint(endpoint string) *Loader {
	return &Loader{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// LoadQuestions fetches the full test split of the named dataset,
// paginating through the rows API, and drops multimodal questions (the
// runner is text-only).
func (l *Loader) LoadQuestions(ctx context.Context, dataset string) ([]api.Question, error) {
	var questions []api.Question
	offset := 0
	total := -1

	for total < 0 || offset < total {
		page, err := l.fetchPage(ctx, dataset, offset)
		if err != nil {
			return nil, err
		}

		total = page.NumRowsTotal
		if len(page.Rows) == 0 {
			break
		}

		for _, row := range page.Rows {
			var q api.Question
			if err := json.Unmarshal(row.Row, &q); err != nil {
				return nil, fmt.Errorf("failed to decode row %d: %w", row.RowIdx, err)
			}
			if q.Image != "" {
				continue
			}
			questions = append(questions, q)
		}

		offset += len(page.Rows)
	}

	log.Info().Str("dataset", dataset).Int("total_rows", total).
		Int("text_questions", len(questions)).Msg("Dataset loaded")

	return questions, nil
}

// fetchPage requests one page of rows starting at offset.
func (l *Loader) fetchPage(ctx context.Context, dataset string, offset int) (*rowsResponse, error) {
	params := url.Values{}
	params.Set("dataset", dataset)
	params.Set("config", datasetConfig)
	params.Set("split", datasetSplit)
	params.Set("offset", fmt.Sprintf("%d", offset))
	params.Set("length", fmt.Sprintf("%d", pageSize))

	reqURL := fmt.Sprintf("%s/rows?%s", l.endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset rows: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("datasets server returned status %d: %s", resp.StatusCode, string(msg))
	}

	var page rowsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode rows response: %w", err)
	}

	return &page, nil
}

// TestQuestions returns a small built-in question set for pipeline
// testing against a live engine without touching the dataset service.
func TestQuestions() []api.Question {
	return []api.Question{
		{
			ID:         "test_q1",
			Question:   "Let $N = 36036$. Find the number of primitive Dirichlet characters of conductor $N$ and order $6$.",
			AnswerType: "exact_match",
		},
	}
}
