package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/JonMunkholm/leopold/internal/logging"
	"github.com/JonMunkholm/leopold/internal/shop"
)

// StoryFallback is returned when the model produces no story text.
const StoryFallback = "Давайте жити дружньо!"

// Recommendation is one suggested toy.
type Recommendation struct {
	ToyID  string `json:"toyId"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

var recommendationSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"toyId":  {Type: genai.TypeString, Description: "ID обраної іграшки зі списку"},
			"name":   {Type: genai.TypeString, Description: "Повна назва іграшки"},
			"reason": {Type: genai.TypeString, Description: "Добре пояснення, чому це підходить"},
		},
		Required: []string{"toyId", "name", "reason"},
	},
}

func recommendationPrompt(age, interests string, toys []shop.Toy) string {
	lines := make([]string, len(toys))
	for i, t := range toys {
		lines[i] = fmt.Sprintf("- %s (ID: %s, Категорія: %s, Вік: %s)", t.Name, t.ID, t.Category, t.AgeRange)
	}

	return fmt.Sprintf(`Ти - кіт Леопольд, помічник у магазині іграшок.
До тебе звернулися за порадою. Дитині %s років, вона цікавиться: %s.

Ось список іграшок, які є в нашому магазині:
%s

Будь ласка, обери 3 НАЙКРАЩІ іграшки ВИКЛЮЧНО з цього списку, які найбільше підійдуть цій дитині.
Поясни свій вибір лагідно, у стилі кота Леопольда.
Відповідай українською мовою.`, age, interests, strings.Join(lines, "\n"))
}

// Recommend asks the model to pick toys from toys for a child of the given
// age and interests. Output that cannot be decoded yields an empty list;
// picks naming a toy id outside toys are dropped.
func (c *Client) Recommend(ctx context.Context, age, interests string, toys []shop.Toy) ([]Recommendation, error) {
	resp, err := c.generate(ctx, c.cfg.TextModel, recommendationPrompt(age, interests, toys), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   recommendationSchema,
	})
	if err != nil {
		return nil, err
	}

	text := responseText(resp)
	if text == "" {
		text = "[]"
	}
	var picks []Recommendation
	if err := json.Unmarshal([]byte(text), &picks); err != nil {
		logging.FromContext(ctx).Warn("unparseable recommendation output", "error", err)
		return []Recommendation{}, nil
	}

	known := make(map[string]bool, len(toys))
	for _, t := range toys {
		known[t.ID] = true
	}
	out := make([]Recommendation, 0, len(picks))
	for _, p := range picks {
		if known[p.ToyID] {
			out = append(out, p)
		}
	}
	return out, nil
}

// Story asks for a short tale about the toy told by Leopold.
func (c *Client) Story(ctx context.Context, toyName string) (string, error) {
	prompt := fmt.Sprintf(`Напиши дуже коротку добру казку (до 3 речень) про іграшку "%s" від імені кота Леопольда. Його девіз: "Хлопці, давайте жити дружньо!". Відповідай українською мовою.`, toyName)

	resp, err := c.generate(ctx, c.cfg.TextModel, prompt, nil)
	if err != nil {
		return "", err
	}
	if story := responseText(resp); story != "" {
		return story, nil
	}
	return StoryFallback, nil
}
