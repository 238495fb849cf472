package kg

import (
	"strings"
	"testing"
)

func newTestChunker(t *testing.T, size, overlap int) *Chunker {
	t.Helper()
	c, err := NewChunker(ChunkerParams{
		Size:      size,
		Overlap:   overlap,
		MaxTokens: 600,
		Encoder:   "o200k_base",
	})
	if err != nil {
		t.Fatalf("failed to create chunker: %v", err)
	}
	return c
}

func TestSplitBlankInput(t *testing.T) {
	c := newTestChunker(t, 1000, 200)
	chunks, err := c.Split("doc-1", "   \n\n  ")
	if err != nil {
		t.Fatal(err)
	}
	if chunks != nil {
		t.Errorf("expected nil for blank input, got %d chunks", len(chunks))
	}
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	c := newTestChunker(t, 1000, 200)
	text := "Revenue increased by 12 percent year over year. Operating margin held steady."

	chunks, err := c.Split("doc-1", text)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("chunk text altered: %q", chunks[0].Text)
	}
	if chunks[0].DocumentID != "doc-1" || chunks[0].Index != 0 {
		t.Errorf("chunk identity wrong: %+v", chunks[0])
	}
}

func TestSplitRespectsSentenceBoundaries(t *testing.T) {
	c := newTestChunker(t, 120, 0)
	var sentences []string
	for i := 0; i < 10; i++ {
		sentences = append(sentences, "The company reported strong quarterly results across all segments.")
	}
	text := strings.Join(sentences, " ")

	chunks, err := c.Split("doc-1", text)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if !strings.HasSuffix(chunk.Text, ".") {
			t.Errorf("chunk %d does not end at a sentence boundary: %q", i, chunk.Text)
		}
		if chunk.Index != i {
			t.Errorf("chunk %d has index %d", i, chunk.Index)
		}
	}
}

func TestSplitOverlapCarriesContext(t *testing.T) {
	c := newTestChunker(t, 150, 80)
	text := "First sentence about revenue growth in the consumer segment. " +
		"Second sentence about operating expenses and headcount. " +
		"Third sentence about guidance for the next fiscal year. " +
		"Fourth sentence about share repurchases and dividends."

	chunks, err := c.Split("doc-1", text)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Each follow-up chunk starts with a sentence already seen at the end
	// of the previous one.
	for i := 1; i < len(chunks); i++ {
		first := strings.SplitN(chunks[i].Text, ". ", 2)[0]
		if !strings.Contains(chunks[i-1].Text, first) {
			t.Errorf("chunk %d does not overlap its predecessor:\nprev: %q\ncurr: %q", i, chunks[i-1].Text, chunks[i].Text)
		}
	}
}

func TestSplitUniqueIDs(t *testing.T) {
	c := newTestChunker(t, 100, 0)
	text := strings.Repeat("Quarterly filings describe material risks in detail. ", 20)

	chunks, err := c.Split("doc-1", text)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]bool)
	for _, chunk := range chunks {
		if chunk.ID == "" {
			t.Error("chunk missing ID")
		}
		if seen[chunk.ID] {
			t.Errorf("duplicate chunk ID %q", chunk.ID)
		}
		seen[chunk.ID] = true
	}
}

func TestSplitIntoSentencesNumberedListing(t *testing.T) {
	sentences := splitIntoSentences("Risks include: 1. supply concentration 2. currency exposure. Guidance is unchanged.")
	if len(sentences) != 2 {
		t.Fatalf("expected numbered listings to stay intact, got %v", sentences)
	}
}
