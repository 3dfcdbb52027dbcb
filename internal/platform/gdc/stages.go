package gdc

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/oncopacket/oncopacket/internal/platform/tabular"
)

const stageIndexSize = "50000"

// FetchStageIndex downloads the AJCC pathologic stage of every GDC case in a
// single TSV export and returns it keyed by case submitter id. Cases without
// a stage are left out.
func (c *Client) FetchStageIndex(ctx context.Context) (map[string]string, error) {
	body := map[string]string{
		"fields": "submitter_id,cases.submitter_id,diagnoses.ajcc_pathologic_stage",
		"format": "TSV",
		"size":   stageIndexSize,
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "text/tab-separated-values").
		SetBody(body).
		Post(casesPath)
	if err != nil {
		return nil, fmt.Errorf("gdc: stage index: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, &APIError{URL: resp.Request.URL, StatusCode: resp.StatusCode(), Status: resp.Status()}
	}
	index, err := parseStageIndex(resp.Body())
	if err != nil {
		return nil, err
	}
	c.logger.Info().Int("cases", len(index)).Msg("loaded stage index")
	return index, nil
}

// parseStageIndex reads the TSV export. Its stage columns are numbered per
// diagnosis (diagnoses.0.ajcc_pathologic_stage, ...); the lowest numbered one
// holding a value wins.
func parseStageIndex(data []byte) (map[string]string, error) {
	rows, err := tabular.Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gdc: parse stage index: %w", err)
	}
	index := make(map[string]string, len(rows))
	if len(rows) == 0 {
		return index, nil
	}
	var stageCols []string
	for col := range rows[0] {
		if strings.HasSuffix(col, "ajcc_pathologic_stage") {
			stageCols = append(stageCols, col)
		}
	}
	if _, ok := rows[0]["submitter_id"]; !ok || len(stageCols) == 0 {
		return nil, fmt.Errorf("gdc: stage index lacks submitter_id or stage columns")
	}
	sort.SliceStable(stageCols, func(i, j int) bool {
		return diagnosisIndex(stageCols[i]) < diagnosisIndex(stageCols[j])
	})

	for _, r := range rows {
		id, ok := r.Get("submitter_id")
		if !ok {
			continue
		}
		for _, col := range stageCols {
			if s, ok := r.Get(col); ok {
				index[id] = s
				break
			}
		}
	}
	return index, nil
}

// diagnosisIndex extracts N from diagnoses.N.ajcc_pathologic_stage. Columns
// without a number sort first.
func diagnosisIndex(col string) int {
	parts := strings.Split(col, ".")
	if len(parts) < 3 {
		return -1
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return -1
	}
	return n
}
