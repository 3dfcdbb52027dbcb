// Package gdc queries the Genomic Data Commons REST API for case data the
// tabular exports do not carry: somatic variants, vital status and stage.
package gdc

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/oncopacket/oncopacket/internal/domain/phenopacket"
	"github.com/oncopacket/oncopacket/internal/domain/terminology"
)

const (
	DefaultBaseURL = "https://api.gdc.cancer.gov"

	variantsPath = "/ssms"
	survivalPath = "/analysis/survival"
	casesPath    = "/cases"

	// UnknownStage is reported when GDC has no stage for a case.
	UnknownStage = "Unknown"
)

const (
	variantFields = "ncbi_build,chromosome,start_position,reference_allele,tumor_allele," +
		"consequence.transcript.aa_change,consequence.transcript.gene.gene_id," +
		"consequence.transcript.gene.symbol,consequence.transcript.transcript_id," +
		"consequence.transcript.annotation.hgvsc"
	caseFields = "demographic.vital_status,diagnoses.ajcc_pathologic_stage"
)

// Config controls the HTTP behaviour of a Client.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	PageSize      int
	RetryCount    int
	RetryWaitTime time.Duration
	UserAgent     string
}

// APIError is returned when GDC answers with a non-200 status.
type APIError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gdc: %s returned %d: %s", e.URL, e.StatusCode, e.Status)
}

// Client is safe for concurrent use.
type Client struct {
	http     *resty.Client
	pageSize int
	logger   zerolog.Logger

	mu      sync.RWMutex
	tx2prot map[string]string
	stages  map[string]string
}

// NewClient creates a GDC client.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.RetryWaitTime <= 0 {
		cfg.RetryWaitTime = time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "oncopacket"
	}

	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWaitTime).
		SetRetryMaxWaitTime(5*cfg.RetryWaitTime).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == 429 || r.StatusCode() >= 500
		}).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")

	return &Client{
		http:     rc,
		pageSize: cfg.PageSize,
		logger:   logger.With().Str("component", "gdc").Logger(),
	}
}

// SetTranscriptMap installs the Ensembl transcript to protein mapping used
// to build hgvs.p expressions.
func (c *Client) SetTranscriptMap(m map[string]string) {
	c.mu.Lock()
	c.tx2prot = m
	c.mu.Unlock()
}

// SetStageIndex installs a prefetched subject to stage index. Once set,
// FetchStage answers from the index without calling GDC.
func (c *Client) SetStageIndex(m map[string]string) {
	c.mu.Lock()
	c.stages = m
	c.mu.Unlock()
}

func (c *Client) protein(transcriptID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.tx2prot[transcriptID]
	return p, ok
}

func subjectFilter(subjectID string) string {
	f := map[string]interface{}{
		"op": "in",
		"content": map[string]interface{}{
			"field": "cases.submitter_id",
			"value": []string{subjectID},
		},
	}
	b, _ := json.Marshal(f)
	return string(b)
}

// query GETs path filtered to one subject and decodes the JSON body into out.
func (c *Client) query(ctx context.Context, path, subjectID, fields string, out interface{}) error {
	params := map[string]string{
		"filters": subjectFilter(subjectID),
		"format":  "JSON",
		"size":    strconv.Itoa(c.pageSize),
	}
	if fields != "" {
		params["fields"] = fields
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(out).
		Get(path)
	if err != nil {
		return fmt.Errorf("gdc: query %s: %w", path, err)
	}
	if resp.StatusCode() != 200 {
		return &APIError{URL: resp.Request.URL, StatusCode: resp.StatusCode(), Status: resp.Status()}
	}
	return nil
}

type casesResponse struct {
	Data struct {
		Hits []struct {
			Demographic struct {
				VitalStatus string `json:"vital_status"`
			} `json:"demographic"`
			Diagnoses []struct {
				AJCCPathologicStage string `json:"ajcc_pathologic_stage"`
			} `json:"diagnoses"`
		} `json:"hits"`
	} `json:"data"`
}

type survivalResponse struct {
	Results []struct {
		Donors []struct {
			Time *float64 `json:"time"`
		} `json:"donors"`
	} `json:"results"`
}

// FetchVitalStatus combines the survival analysis endpoint (survival time of
// the first donor) with the case demographic (status).
func (c *Client) FetchVitalStatus(ctx context.Context, subjectID string) (*phenopacket.VitalStatus, error) {
	var survival survivalResponse
	if err := c.query(ctx, survivalPath, subjectID, "", &survival); err != nil {
		return nil, err
	}
	var cases casesResponse
	if err := c.query(ctx, casesPath, subjectID, caseFields, &cases); err != nil {
		return nil, err
	}

	vs := &phenopacket.VitalStatus{Status: terminology.StatusUnknown}
	if hits := cases.Data.Hits; len(hits) > 0 {
		vs.Status = terminology.VitalStatusOf(hits[0].Demographic.VitalStatus)
	}
	if len(survival.Results) > 0 && len(survival.Results[0].Donors) > 0 {
		if t := survival.Results[0].Donors[0].Time; t != nil {
			days := int(*t)
			vs.SurvivalTimeInDays = &days
		}
	}
	return vs, nil
}

// FetchStage returns the AJCC pathologic stage of the first diagnosis of a
// case, or UnknownStage.
func (c *Client) FetchStage(ctx context.Context, subjectID string) (string, error) {
	c.mu.RLock()
	index := c.stages
	c.mu.RUnlock()
	if index != nil {
		if s, ok := index[subjectID]; ok && s != "" {
			return s, nil
		}
		return UnknownStage, nil
	}

	var cases casesResponse
	if err := c.query(ctx, casesPath, subjectID, caseFields, &cases); err != nil {
		return "", err
	}
	hits := cases.Data.Hits
	if len(hits) == 0 || len(hits[0].Diagnoses) == 0 || hits[0].Diagnoses[0].AJCCPathologicStage == "" {
		return UnknownStage, nil
	}
	return hits[0].Diagnoses[0].AJCCPathologicStage, nil
}
