package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AutmateStudio/Anonimiser/internal/entity"
)

const defaultNERTimeout = 10 * time.Second

// NERClient adapts an external NER model service to the Detector interface.
// The service contract is the detector contract: POST {"text": ...} returns
// a JSON array of {entity, start, end, text, score} with rune offsets into
// the exact input and scores in [0,1]. Model internals (tokenization,
// BIO decoding) stay on the other side of the wire.
type NERClient struct {
	baseURL string
	client  *http.Client
}

// NewNERClient returns a client for the NER service at baseURL. A zero
// timeout uses the default.
func NewNERClient(baseURL string, timeout time.Duration) *NERClient {
	if timeout <= 0 {
		timeout = defaultNERTimeout
	}
	return &NERClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name implements Detector.
func (c *NERClient) Name() string { return "ner" }

type nerRequest struct {
	Text string `json:"text"`
}

// Detect queries the NER service. Organization spans are dropped: this
// service redacts personal data, and company names in support transcripts
// are overwhelmingly the operator's own.
func (c *NERClient) Detect(ctx context.Context, text string) ([]entity.CandidateSpan, error) {
	ctx, span := tracer.Start(ctx, "detect.ner")
	defer span.End()

	body, err := json.Marshal(nerRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("encoding NER request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/entities", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building NER request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling NER service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NER service returned %d", resp.StatusCode)
	}

	var spans []entity.CandidateSpan
	if err := json.NewDecoder(resp.Body).Decode(&spans); err != nil {
		return nil, fmt.Errorf("decoding NER response: %w", err)
	}

	out := spans[:0]
	for _, s := range spans {
		if s.Category == entity.CategoryOrg {
			continue
		}
		out = append(out, s)
	}

	span.SetAttributes(attribute.Int("detect.ner.candidates", len(out)))
	return out, nil
}
