// Package llm provides the Gemini text generation client and the helpers
// shared by every stage that consumes its output.
package llm

// Default model priority list, most preferred first.
var defaultModels = []string{
	"models/gemini-2.0-flash-lite",
	"models/gemini-2.0-flash",
	"models/gemini-flash-latest",
	"models/gemini-2.0-flash-exp",
	"models/gemini-pro-latest",
}

// DefaultFallbackModel is retried once after every model in the list failed
const DefaultFallbackModel = "models/gemini-flash-latest"

// DefaultTemperature keeps structured output stable across calls
const DefaultTemperature float32 = 0.1

// DefaultModels returns a copy of the default model priority list
func DefaultModels() []string {
	return append([]string(nil), defaultModels...)
}

// ClientConfig holds the generation settings applied to every request.
type ClientConfig struct {
	Temperature float32
	// JSONMode asks the backend for an application/json response body
	JSONMode bool
}

// DefaultClientConfig returns the default generation settings
func DefaultClientConfig() ClientConfig {
	return ClientConfig{Temperature: DefaultTemperature}
}
