package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ludo-technologies/docsim/domain"
)

// SimilarityOutputFormatter implements the domain.SimilarityOutputFormatter interface
type SimilarityOutputFormatter struct {
	utils *FormatUtils
}

// NewSimilarityOutputFormatter creates a new similarity output formatter
func NewSimilarityOutputFormatter() *SimilarityOutputFormatter {
	return &SimilarityOutputFormatter{utils: NewFormatUtils()}
}

// Write formats a similarity response according to the specified format
func (f *SimilarityOutputFormatter) Write(response *domain.SimilarityResponse, format domain.OutputFormat, writer io.Writer) error {
	if response == nil {
		return domain.NewOutputError("no response to format", nil)
	}

	switch format {
	case domain.OutputFormatText:
		return f.formatAsText(response, writer)
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatCSV:
		return f.formatAsCSV(response, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// formatAsText formats the response as human-readable text
func (f *SimilarityOutputFormatter) formatAsText(response *domain.SimilarityResponse, writer io.Writer) error {
	var b strings.Builder
	u := f.utils

	b.WriteString(u.FormatMainHeader("Near-Duplicate Detection Results"))

	stats := response.Index.Stats
	b.WriteString(u.FormatSectionHeader("Index"))
	b.WriteString(u.FormatLabelWithIndent(SectionPadding, "Source", response.Index.Source))
	if response.Index.Snapshot != "" {
		b.WriteString(u.FormatLabelWithIndent(SectionPadding, "Snapshot", response.Index.Snapshot))
	}
	b.WriteString(u.FormatLabelWithIndent(SectionPadding, "Documents", stats.NumDocuments))
	b.WriteString(u.FormatLabelWithIndent(SectionPadding, "Hashes", stats.NumHashes))
	b.WriteString(u.FormatLabelWithIndent(SectionPadding, "Bands x rows", fmt.Sprintf("%d x %d", stats.Bands, stats.Rows)))
	b.WriteString(u.FormatLabelWithIndent(SectionPadding, "Approx. threshold", u.FormatSimilarity(stats.Threshold)))
	b.WriteString(u.FormatLabelWithIndent(SectionPadding, "Buckets", fmt.Sprintf("%d (%d shared)", stats.NumBuckets, stats.SharedBuckets)))
	b.WriteString(u.FormatLabelWithIndent(SectionPadding, "Candidate pairs", stats.CandidatePairs))
	b.WriteString(u.FormatLabelWithIndent(SectionPadding, "Build time", u.FormatDuration(response.Index.BuildTime)))
	b.WriteString(u.FormatSectionSeparator())

	switch response.Mode {
	case domain.QueryModeDocument:
		if response.Query != nil {
			b.WriteString(u.FormatSectionHeader("Query"))
			b.WriteString(u.FormatLabelWithIndent(SectionPadding, "Document", fmt.Sprintf("[%d] %s", response.Query.Index, response.Query.Path)))
			b.WriteString(u.FormatLabelWithIndent(SectionPadding, "Shingles", response.Query.Shingles))
			b.WriteString(u.FormatLabelWithIndent(SectionPadding, "Threshold", u.FormatSimilarity(response.Threshold)))
			b.WriteString(u.FormatSectionSeparator())
		}

		b.WriteString(u.FormatSectionHeader("Similar documents"))
		if len(response.Matches) == 0 {
			b.WriteString("  No similar documents found.\n")
		}
		for _, m := range response.Matches {
			fmt.Fprintf(&b, "  %s  %-9s  [%d] %s\n",
				u.FormatSimilarity(m.Similarity), u.FormatBand(ClassifySimilarity(m.Similarity)), m.Index, m.Path)
		}
		b.WriteString(u.FormatSectionSeparator())

	case domain.QueryModePairs:
		b.WriteString(u.FormatSectionHeader("Duplicate pairs"))
		b.WriteString(u.FormatLabelWithIndent(SectionPadding, "Threshold", u.FormatSimilarity(response.Threshold)))
		b.WriteString(u.FormatLabelWithIndent(SectionPadding, "Pairs found", len(response.Pairs)))
		b.WriteString(u.FormatSectionSeparator())
		for _, p := range response.Pairs {
			fmt.Fprintf(&b, "  %s  %-9s  [%d] %s\n", u.FormatSimilarity(p.Similarity),
				u.FormatBand(ClassifySimilarity(p.Similarity)), p.Index1, p.Path1)
			fmt.Fprintf(&b, "  %s  %-9s  [%d] %s\n", strings.Repeat(" ", 5), "", p.Index2, p.Path2)
		}
		if len(response.Pairs) > 0 {
			b.WriteString(u.FormatSectionSeparator())
		}
	}

	b.WriteString(u.FormatWarningsSection(skippedWarnings(response.Index.Skipped)))
	fmt.Fprintf(&b, "Completed in %s\n", u.FormatDuration(response.Duration))

	_, err := io.WriteString(writer, b.String())
	return err
}

func skippedWarnings(skipped []string) []string {
	if len(skipped) == 0 {
		return nil
	}
	warnings := make([]string, len(skipped))
	for i, path := range skipped {
		warnings[i] = "skipped (no shingles): " + path
	}
	return warnings
}

// formatAsCSV writes one row per match or pair
func (f *SimilarityOutputFormatter) formatAsCSV(response *domain.SimilarityResponse, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)

	var rows [][]string
	switch response.Mode {
	case domain.QueryModeDocument:
		rows = append(rows, []string{"query_index", "query_path", "index", "path", "similarity"})
		var qIdx, qPath string
		if response.Query != nil {
			qIdx, qPath = strconv.Itoa(response.Query.Index), response.Query.Path
		}
		for _, m := range response.Matches {
			rows = append(rows, []string{qIdx, qPath, strconv.Itoa(m.Index), m.Path, formatFloat(m.Similarity)})
		}
	case domain.QueryModePairs:
		rows = append(rows, []string{"index1", "path1", "index2", "path2", "similarity"})
		for _, p := range response.Pairs {
			rows = append(rows, []string{strconv.Itoa(p.Index1), p.Path1, strconv.Itoa(p.Index2), p.Path2, formatFloat(p.Similarity)})
		}
	default:
		s := response.Index.Stats
		rows = append(rows,
			[]string{"documents", "hashes", "bands", "rows", "buckets", "shared_buckets", "candidate_pairs", "threshold"},
			[]string{
				strconv.Itoa(s.NumDocuments), strconv.Itoa(s.NumHashes), strconv.Itoa(s.Bands), strconv.Itoa(s.Rows),
				strconv.Itoa(s.NumBuckets), strconv.Itoa(s.SharedBuckets), strconv.Itoa(s.CandidatePairs), formatFloat(s.Threshold),
			})
	}

	if err := csvWriter.WriteAll(rows); err != nil {
		return domain.NewOutputError("failed to write CSV", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
