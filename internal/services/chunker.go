package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TextChunker splits resource documents into embeddable passages.
type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText packs paragraphs into chunks of at most maxChunkSize runes. Oversized
// paragraphs are packed sentence by sentence. Each new chunk starts with the
// last overlap runes of the previous one.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	p := &packer{max: maxChunkSize, overlap: overlap}
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) <= maxChunkSize {
			p.add(para, "\n\n")
			continue
		}
		for _, sentence := range splitIntoSentences(para) {
			p.add(sentence, " ")
		}
	}
	return p.finish()
}

type packer struct {
	max     int
	overlap int
	chunks  []string
	current strings.Builder
}

func (p *packer) add(piece, sep string) {
	size := utf8.RuneCountInString(p.current.String())
	if size > 0 && size+len(sep)+utf8.RuneCountInString(piece) > p.max {
		p.flush()
	}
	if p.current.Len() > 0 {
		p.current.WriteString(sep)
	}
	p.current.WriteString(piece)
}

func (p *packer) flush() {
	prev := p.current.String()
	p.chunks = append(p.chunks, prev)
	p.current.Reset()
	p.current.WriteString(lastRunes(prev, p.overlap))
}

func (p *packer) finish() []string {
	if p.current.Len() > 0 {
		p.chunks = append(p.chunks, p.current.String())
	}
	return p.chunks
}

// splitIntoSentences keeps the terminating punctuation on each sentence.
func splitIntoSentences(text string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		next := i + utf8.RuneLen(r)
		if next < len(text) {
			nr, _ := utf8.DecodeRuneInString(text[next:])
			if !unicode.IsSpace(nr) {
				continue
			}
		}
		if s := strings.TrimSpace(text[start:next]); s != "" {
			sentences = append(sentences, s)
		}
		start = next
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func lastRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}
