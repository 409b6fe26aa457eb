package bio

import (
	"context"
	"fmt"

	"user-record-service/pkg/security"
)

// DefaultLocation is used in prompts and fallbacks when a user has no address.
const DefaultLocation = "somewhere"

// Generator produces a one-sentence biography. It never fails: on any
// problem it returns Fallback for the same inputs.
type Generator interface {
	Generate(ctx context.Context, name string, age int, location string) string
}

// BuildPrompt returns the instruction sent to the text model.
func BuildPrompt(name string, age int, location string) string {
	name = security.SanitizePromptField(name)
	location = security.SanitizePromptField(location)
	if location == "" {
		location = DefaultLocation
	}

	return fmt.Sprintf(
		"Write one short, casual biography sentence of at most 15 words about a person named %q, "+
			"aged %d, who lives in %q. Write it in the language most commonly spoken in %q. "+
			"Reply with the sentence only, without quotes, explanations or any other commentary.",
		name, age, location, location,
	)
}

// Fallback is the deterministic bio used whenever the model cannot answer.
func Fallback(name string, age int, location string) string {
	if location == "" {
		location = DefaultLocation
	}
	return fmt.Sprintf("Hi, I'm %s, %d years old, from %s.", name, age, location)
}

// StaticGenerator always returns Fallback. It backs enrichment when no
// model credentials are configured.
type StaticGenerator struct{}

// Generate implements Generator.
func (StaticGenerator) Generate(_ context.Context, name string, age int, location string) string {
	return Fallback(name, age, location)
}
