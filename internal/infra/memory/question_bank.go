package memory

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"ieee-quiz/internal/domain"
)

//go:embed questions.yaml
var embeddedQuestions []byte

// QuestionBank parses a YAML question bank once and serves the cached copy.
type QuestionBank struct {
	raw      []byte
	validate *validator.Validate
	sf       singleflight.Group

	mu        sync.RWMutex
	questions []domain.Question
}

// NewEmbeddedQuestionBank returns the bank compiled into the binary.
func NewEmbeddedQuestionBank() *QuestionBank {
	return NewQuestionBank(embeddedQuestions)
}

// NewQuestionBank returns a bank backed by raw YAML (useful for tests).
func NewQuestionBank(raw []byte) *QuestionBank {
	return &QuestionBank{
		raw:      raw,
		validate: validator.New(),
	}
}

// LoadQuestions returns the parsed bank. Concurrent first calls share a single parse.
func (b *QuestionBank) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	b.mu.RLock()
	if b.questions != nil {
		qs := b.questions
		b.mu.RUnlock()
		return qs, nil
	}
	b.mu.RUnlock()

	result, err, _ := b.sf.Do("bank", func() (interface{}, error) {
		b.mu.RLock()
		if b.questions != nil {
			qs := b.questions
			b.mu.RUnlock()
			return qs, nil
		}
		b.mu.RUnlock()

		qs, err := b.parse()
		if err != nil {
			return nil, err
		}

		b.mu.Lock()
		b.questions = qs
		b.mu.Unlock()
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (b *QuestionBank) parse() ([]domain.Question, error) {
	var qs []domain.Question
	if err := yaml.Unmarshal(b.raw, &qs); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidQuestionBank, err)
	}
	if len(qs) == 0 {
		return nil, domain.ErrEmptyQuestionBank
	}
	for i := range qs {
		if err := b.validate.Struct(qs[i]); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", domain.ErrInvalidQuestionBank, i+1, err)
		}
	}
	return qs, nil
}
