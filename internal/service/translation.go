package service

import (
	"context"
	"errors"

	"github.com/Harshitk-cp/fabric/internal/domain"
	"github.com/Harshitk-cp/fabric/internal/ir"
)

var (
	ErrTranslationTextEmpty = errors.New("text is required")
	ErrParserUnavailable    = errors.New("language parser not configured")
)

// Parser turns natural-language text into the intermediate representation.
type Parser interface {
	ParseRule(ctx context.Context, text string) (*ir.Rule, error)
	ParseStatement(ctx context.Context, text string) (*ir.Statement, error)
}

// TranslationService chains the parser and the IR translator: text in,
// engine-ready rules or statements out.
type TranslationService struct {
	parser     Parser
	translator *ir.Translator
}

func NewTranslationService(parser Parser) *TranslationService {
	return &TranslationService{
		parser:     parser,
		translator: ir.NewTranslator(),
	}
}

// TranslateRule parses text into IR and lowers it onto primitive rules. A
// single sentence can yield several rules when its condition contains OR.
func (s *TranslationService) TranslateRule(ctx context.Context, text string) ([]domain.Rule, error) {
	if text == "" {
		return nil, ErrTranslationTextEmpty
	}
	if s.parser == nil {
		return nil, ErrParserUnavailable
	}

	parsed, err := s.parser.ParseRule(ctx, text)
	if err != nil {
		return nil, err
	}
	return s.translator.TranslateRule(parsed)
}

// TranslateStatement parses text into a single engine statement.
func (s *TranslationService) TranslateStatement(ctx context.Context, text string) (*domain.Statement, error) {
	if text == "" {
		return nil, ErrTranslationTextEmpty
	}
	if s.parser == nil {
		return nil, ErrParserUnavailable
	}

	parsed, err := s.parser.ParseStatement(ctx, text)
	if err != nil {
		return nil, err
	}
	stmt := s.translator.TranslateStatement(parsed)
	return &stmt, nil
}
