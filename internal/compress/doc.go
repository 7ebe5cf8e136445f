// Package compress reduces extracted document text to fit a token budget.
//
// The package implements two compression strategies: extractive (frequency-based
// sentence selection) and heuristic (line deduplication plus abbreviation
// substitution with a truncation fallback). Both are deterministic and run
// without external services, so a given input and budget always produce the
// same output.
//
// # Token Estimation
//
// Token counts are estimated, never exact: 1 token is approximated as 4
// characters of text. Every budget decision in this package uses that
// estimate, and callers must tolerate the error it introduces. The estimate
// is cheap, stable, and close enough for budget gating against real
// tokenizers.
//
// # Budget Gating
//
// Compression only runs when the estimated token count exceeds MaxTokens.
// Text under the budget is returned unchanged (after normalization), with
// identical original and final token estimates. When compression does run,
// the effective retention ratio is
//
//	min(maxTokens, originalTokens × ratio) / originalTokens
//
// applied once against the sentence count. The output size is not re-checked
// afterward: sentence lengths vary, so the final token estimate can land
// above or below the nominal target. That single-pass behavior is
// intentional and documented rather than corrected.
//
// # Algorithms
//
// Extractive:
//   - Splits text into sentences at terminal punctuation.
//   - Builds a document-wide word frequency table (stop words and short
//     tokens excluded, counts normalized by the maximum).
//   - Scores each sentence by summed frequencies with bonuses for leading/
//     trailing position (×1.2) and digit content (×1.1).
//   - Keeps the top-scoring sentences for the retention ratio, restores
//     original order, and joins with single spaces.
//
// Heuristic:
//   - Strips page-number lines, deduplicates lines by prefix fingerprint,
//     applies an ordered abbreviation table, and hard-truncates as a last
//     resort. Faster and cruder; suited to repetitive or tabular text.
//
// Auto selects between the two based on content shape.
//
// # Usage
//
//	svc, err := compress.NewService(compress.Config{
//	    MaxTokens: 100000,
//	    Ratio:     0.5,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := svc.Compress(ctx, text, compress.AlgorithmExtractive, compress.Options{
//	    MaxTokens: 8000,
//	    Ratio:     0.5,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d → %d tokens (%.1f%% of original)\n",
//	    result.OriginalTokens, result.FinalTokens, result.RetentionPercent())
//
// # Observability
//
// The service exports OpenTelemetry metrics and traces:
//   - pdfsqueeze.compression.operations_total (counter): Operations by algorithm
//   - pdfsqueeze.compression.duration_seconds (histogram): Processing time
//   - pdfsqueeze.compression.retention_percent (histogram): Final/original token ratio
//   - pdfsqueeze.compression.quality_score (histogram): Quality score distribution
//   - pdfsqueeze.compression.errors_total (counter): Error counts by type
package compress
