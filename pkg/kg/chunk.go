package kg

import (
	"strings"
	"unicode"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkoukk/tiktoken-go"
)

// Chunk is one extraction unit of a document.
type Chunk struct {
	ID         string
	DocumentID string
	Index      int
	Text       string
}

// ChunkerParams contains configuration options for creating a new Chunker.
type ChunkerParams struct {
	// Size is the target chunk length in characters.
	Size int
	// Overlap is the number of trailing characters carried into the next
	// chunk for context continuity.
	Overlap int
	// MaxTokens caps the token count of a single chunk regardless of its
	// character length.
	MaxTokens int
	// Encoder names the tiktoken encoding used for the token cap.
	Encoder string
}

// Chunker splits document text into overlapping chunks on sentence
// boundaries. Chunks target a character size but never exceed a token cap,
// so oversized chunks cannot blow the extraction model's context window.
type Chunker struct {
	size      int
	overlap   int
	maxTokens int
	enc       *tiktoken.Tiktoken
}

// NewChunker creates a Chunker, resolving the tiktoken encoding up front.
func NewChunker(params ChunkerParams) (*Chunker, error) {
	encoder := params.Encoder
	if encoder == "" {
		encoder = "o200k_base"
	}
	enc, err := tiktoken.GetEncoding(encoder)
	if err != nil {
		return nil, err
	}

	size := params.Size
	if size <= 0 {
		size = 1000
	}
	overlap := params.Overlap
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}
	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 600
	}

	return &Chunker{
		size:      size,
		overlap:   overlap,
		maxTokens: maxTokens,
		enc:       enc,
	}, nil
}

// Split breaks text into overlapping chunks. Sentences are never split in
// half; a chunk ends at the sentence boundary where either the character
// target or the token cap would be exceeded. Returns nil for blank input.
func (c *Chunker) Split(documentID, text string) ([]Chunk, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	sentences := splitIntoSentences(text)
	if len(sentences) == 0 {
		return nil, nil
	}

	var chunks []Chunk
	var current []string
	currentLen := 0
	// A buffer holding only the carried overlap must not flush as a chunk
	// of its own.
	carryOnly := false

	flush := func() error {
		if len(current) == 0 || carryOnly {
			return nil
		}
		id, err := gonanoid.New()
		if err != nil {
			return err
		}
		chunks = append(chunks, Chunk{
			ID:         id,
			DocumentID: documentID,
			Index:      len(chunks),
			Text:       strings.Join(current, " "),
		})

		// Carry trailing sentences into the next chunk up to the overlap
		// budget.
		var carry []string
		carryLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			sLen := len(current[i]) + 1
			if carryLen+sLen > c.overlap {
				break
			}
			carry = append([]string{current[i]}, carry...)
			carryLen += sLen
		}
		current = carry
		currentLen = carryLen
		carryOnly = true
		return nil
	}

	for _, sentence := range sentences {
		sLen := len(sentence)
		if currentLen > 0 {
			sLen++
		}

		if len(current) > 0 && (currentLen+sLen > c.size || c.tokenCount(current, sentence) > c.maxTokens) {
			if err := flush(); err != nil {
				return nil, err
			}
			sLen = len(sentence)
			if currentLen > 0 {
				sLen++
			}
		}

		current = append(current, sentence)
		currentLen += sLen
		carryOnly = false
	}

	if err := flush(); err != nil {
		return nil, err
	}

	return chunks, nil
}

func (c *Chunker) tokenCount(current []string, next string) int {
	text := strings.Join(append(append([]string{}, current...), next), " ")
	return len(c.enc.Encode(text, nil, nil))
}

func splitIntoSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if current.Len() > 0 {
				sentences = append(sentences, strings.TrimSpace(current.String()))
				current.Reset()
			}
			continue
		}

		for _, sentence := range splitLineIntoSentences(trimmed) {
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(sentence)

			if endsSentence(sentence) {
				sentences = append(sentences, strings.TrimSpace(current.String()))
				current.Reset()
			}
		}
	}

	if current.Len() > 0 {
		sentences = append(sentences, strings.TrimSpace(current.String()))
	}

	var result []string
	for _, sentence := range sentences {
		if strings.TrimSpace(sentence) != "" {
			result = append(result, sentence)
		}
	}
	return result
}

func endsSentence(s string) bool {
	s = strings.TrimRight(strings.TrimSpace(s), `"')]}`)
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

func splitLineIntoSentences(line string) []string {
	var sentences []string
	var current strings.Builder

	for i := 0; i < len(line); i++ {
		current.WriteByte(line[i])

		if line[i] == '.' || line[i] == '!' || line[i] == '?' {
			// "1. Revenue grew" style numbered listings are not sentence
			// ends.
			if i > 0 && unicode.IsDigit(rune(line[i-1])) && i+1 < len(line) && line[i+1] == ' ' {
				continue
			}

			j := i + 1
			for j < len(line) && (line[j] == '.' || line[j] == '!' || line[j] == '?') {
				current.WriteByte(line[j])
				j++
			}
			for j < len(line) && (line[j] == '"' || line[j] == '\'' || line[j] == ')' ||
				line[j] == ']' || line[j] == '}') {
				current.WriteByte(line[j])
				j++
			}

			sentence := strings.TrimSpace(current.String())
			if sentence != "" {
				sentences = append(sentences, sentence)
			}
			current.Reset()
			i = j - 1
		}
	}

	remaining := strings.TrimSpace(current.String())
	if remaining != "" {
		sentences = append(sentences, remaining)
	}

	return sentences
}
