package gdc

import (
	"context"

	"github.com/oncopacket/oncopacket/internal/domain/phenopacket"
)

type ssmsResponse struct {
	Data struct {
		Hits []mutation `json:"hits"`
	} `json:"data"`
}

type mutation struct {
	ID              string        `json:"id"`
	SSMID           string        `json:"ssm_id"`
	NCBIBuild       string        `json:"ncbi_build"`
	Chromosome      string        `json:"chromosome"`
	StartPosition   uint64        `json:"start_position"`
	ReferenceAllele string        `json:"reference_allele"`
	TumorAllele     string        `json:"tumor_allele"`
	Consequence     []consequence `json:"consequence"`
}

type consequence struct {
	Transcript struct {
		TranscriptID string `json:"transcript_id"`
		AAChange     string `json:"aa_change"`
		Gene         struct {
			GeneID string `json:"gene_id"`
			Symbol string `json:"symbol"`
		} `json:"gene"`
		Annotation struct {
			HGVSc string `json:"hgvsc"`
		} `json:"annotation"`
	} `json:"transcript"`
}

// FetchVariants returns the simple somatic mutations GDC records for a case.
func (c *Client) FetchVariants(ctx context.Context, subjectID string) ([]*phenopacket.VariantInterpretation, error) {
	var resp ssmsResponse
	if err := c.query(ctx, variantsPath, subjectID, variantFields, &resp); err != nil {
		return nil, err
	}
	out := make([]*phenopacket.VariantInterpretation, 0, len(resp.Data.Hits))
	for i := range resp.Data.Hits {
		out = append(out, c.variantInterpretation(&resp.Data.Hits[i]))
	}
	c.logger.Debug().Str("subject_id", subjectID).Int("variants", len(out)).Msg("fetched variants")
	return out, nil
}

func (c *Client) variantInterpretation(m *mutation) *phenopacket.VariantInterpretation {
	id := m.ID
	if id == "" {
		id = m.SSMID
	}
	vd := &phenopacket.VariationDescriptor{ID: id, MoleculeContext: "genomic"}

	// Indels reported with "-" alleles have no VCF representation.
	if m.ReferenceAllele != "-" && m.TumorAllele != "-" {
		vd.VcfRecord = &phenopacket.VcfRecord{
			GenomeAssembly: m.NCBIBuild,
			Chrom:          m.Chromosome,
			Pos:            m.StartPosition,
			ID:             id,
			Ref:            m.ReferenceAllele,
			Alt:            m.TumorAllele,
		}
	} else {
		c.logger.Debug().Str("variant_id", id).Msg("no vcf record for variant with missing alleles")
	}

	for _, csq := range m.Consequence {
		tx := csq.Transcript
		if tx.TranscriptID != "" && tx.Annotation.HGVSc != "" {
			vd.Expressions = append(vd.Expressions, &phenopacket.Expression{
				Syntax: "hgvs.c",
				Value:  tx.TranscriptID + ":" + tx.Annotation.HGVSc,
			})
		}
		if prot, ok := c.protein(tx.TranscriptID); ok && tx.AAChange != "" {
			vd.Expressions = append(vd.Expressions, &phenopacket.Expression{
				Syntax: "hgvs.p",
				Value:  prot + ":p." + tx.AAChange,
			})
		}
		if vd.GeneContext == nil && tx.Gene.GeneID != "" {
			vd.GeneContext = &phenopacket.GeneDescriptor{ValueID: tx.Gene.GeneID, Symbol: tx.Gene.Symbol}
		}
	}
	return &phenopacket.VariantInterpretation{VariationDescriptor: vd}
}
