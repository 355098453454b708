package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

// Service hands out the translator used for user facing map messages.
type Service interface {
	Translator() interfaces.Translator
	DefaultLocale() string
}

// NewInMemoryService indexes translations by normalized locale tag. Lookups
// fall back from a regional locale to its base language and then to the
// default locale. A missing key translates to itself.
func NewInMemoryService(cfg Config, translations map[string]map[string]string) (Service, error) {
	defaultLocale, err := canonical(cfg.DefaultLocale)
	if err != nil {
		return nil, fmt.Errorf("i18n: default locale %q: %w", cfg.DefaultLocale, err)
	}
	index := make(map[string]map[string]string, len(translations))
	for locale, messages := range translations {
		tag, err := canonical(locale)
		if err != nil {
			return nil, fmt.Errorf("i18n: locale %q: %w", locale, err)
		}
		bucket := index[tag]
		if bucket == nil {
			bucket = make(map[string]string, len(messages))
			index[tag] = bucket
		}
		for key, value := range messages {
			bucket[key] = value
		}
	}
	return &memoryService{
		translator: memoryTranslator{
			defaultLocale: defaultLocale,
			messages:      index,
		},
	}, nil
}

// DefaultService builds the service from the embedded map messages.
func DefaultService() (Service, error) {
	bundle, err := DefaultBundle()
	if err != nil {
		return nil, err
	}
	return NewInMemoryService(bundle.Config, bundle.Translations)
}

type memoryService struct {
	translator memoryTranslator
}

func (s *memoryService) Translator() interfaces.Translator {
	return s.translator
}

func (s *memoryService) DefaultLocale() string {
	return s.translator.defaultLocale
}

// NoOpService returns keys unchanged.
type NoOpService struct{}

func NewNoOpService() Service {
	return NoOpService{}
}

func (NoOpService) Translator() interfaces.Translator {
	return noopTranslator{}
}

func (NoOpService) DefaultLocale() string {
	return ""
}

type noopTranslator struct{}

func (noopTranslator) Translate(_ string, key string, _ ...any) (string, error) {
	return key, nil
}

type memoryTranslator struct {
	defaultLocale string
	messages      map[string]map[string]string
}

func (t memoryTranslator) Translate(locale, key string, args ...any) (string, error) {
	for _, candidate := range t.candidates(locale) {
		if message, ok := t.messages[candidate][key]; ok {
			if len(args) > 0 {
				return fmt.Sprintf(message, args...), nil
			}
			return message, nil
		}
	}
	return key, nil
}

func (t memoryTranslator) candidates(locale string) []string {
	out := make([]string, 0, 3)
	if tag, err := language.Parse(strings.TrimSpace(locale)); err == nil {
		out = append(out, tag.String())
		if base, confidence := tag.Base(); confidence != language.No {
			if b := base.String(); b != out[0] {
				out = append(out, b)
			}
		}
	}
	if t.defaultLocale != "" {
		out = append(out, t.defaultLocale)
	}
	return out
}

func canonical(locale string) (string, error) {
	trimmed := strings.TrimSpace(locale)
	if trimmed == "" {
		return "", nil
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", err
	}
	return tag.String(), nil
}
