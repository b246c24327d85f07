package core

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/leopold/internal/assistant"
	"github.com/JonMunkholm/leopold/internal/shop"
)

// MaxSpeechRunes caps the text sent for speech synthesis.
const MaxSpeechRunes = 2000

// Recommend asks the assistant to pick toys from the catalog for a child.
func (s *Service) Recommend(ctx context.Context, age, interests string) ([]assistant.Recommendation, error) {
	age, interests = strings.TrimSpace(age), strings.TrimSpace(interests)

	var errs shop.ValidationErrors
	if age == "" {
		errs = append(errs, shop.ValidationError{Field: "age", Message: "required field is empty"})
	}
	if interests == "" {
		errs = append(errs, shop.ValidationError{Field: "interests", Message: "required field is empty"})
	}
	if len(errs) > 0 {
		return nil, errs
	}

	picks, err := s.assistant.Recommend(ctx, age, interests, s.shop.Toys())
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	return picks, nil
}

// Story returns a short tale about the toy with id.
func (s *Service) Story(ctx context.Context, toyID string) (string, error) {
	t, err := s.Toy(toyID)
	if err != nil {
		return "", err
	}
	story, err := s.assistant.Story(ctx, t.Name)
	if err != nil {
		return "", fmt.Errorf("story: %w", err)
	}
	return story, nil
}

// Speech synthesizes text.
func (s *Service) Speech(ctx context.Context, text string) (assistant.Audio, error) {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return assistant.Audio{}, shop.ValidationErrors{{Field: "text", Message: "required field is empty"}}
	case utf8.RuneCountInString(text) > MaxSpeechRunes:
		return assistant.Audio{}, shop.ValidationErrors{{Field: "text", Message: fmt.Sprintf("text is longer than %d characters", MaxSpeechRunes)}}
	}

	audio, err := s.assistant.Speech(ctx, text)
	if err != nil {
		return assistant.Audio{}, fmt.Errorf("speech: %w", err)
	}
	return audio, nil
}
