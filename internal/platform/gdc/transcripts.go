package gdc

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/oncopacket/oncopacket/internal/platform/tabular"
)

// DefaultTranscriptURL is the Ensembl cross-reference export mapping
// transcripts to proteins.
const DefaultTranscriptURL = "https://ftp.ensembl.org/pub/current_tsv/homo_sapiens/Homo_sapiens.GRCh38.113.ena.tsv.gz"

type transcriptRow struct {
	TranscriptID string `csv:"transcript_stable_id"`
	ProteinID    string `csv:"protein_stable_id"`
}

// LoadTranscriptMap downloads a transcript to protein table from url. Files
// ending in .gz are decompressed.
func (c *Client) LoadTranscriptMap(ctx context.Context, url string) (map[string]string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("gdc: download transcript map: %w", err)
	}
	raw := resp.RawBody()
	defer raw.Close()
	if resp.StatusCode() != 200 {
		return nil, &APIError{URL: url, StatusCode: resp.StatusCode(), Status: resp.Status()}
	}

	var r io.Reader = raw
	if strings.HasSuffix(url, ".gz") {
		gz, err := gzip.NewReader(raw)
		if err != nil {
			return nil, fmt.Errorf("gdc: open transcript map: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	m, err := ReadTranscriptMap(r)
	if err != nil {
		return nil, err
	}
	c.logger.Info().Int("transcripts", len(m)).Str("url", url).Msg("loaded transcript map")
	return m, nil
}

// ReadTranscriptMap decodes a tab-separated table with transcript_stable_id
// and protein_stable_id columns. Non-coding transcripts are skipped.
func ReadTranscriptMap(r io.Reader) (map[string]string, error) {
	var rows []transcriptRow
	if err := tabular.DecodeTSV(r, &rows); err != nil {
		return nil, fmt.Errorf("gdc: decode transcript map: %w", err)
	}
	m := make(map[string]string, len(rows))
	for _, row := range rows {
		if row.TranscriptID == "" || row.ProteinID == "" || row.ProteinID == "-" {
			continue
		}
		m[row.TranscriptID] = row.ProteinID
	}
	return m, nil
}
