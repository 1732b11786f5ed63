package config

import "time"

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewLLMForTest creates an LLM config for testing purposes
func NewLLMForTest(provider, geminiProject, openaiAPIKey, claudeAPIKey, baseModel, fallbackModel string) *LLM {
	return &LLM{
		provider:       provider,
		geminiProject:  geminiProject,
		geminiLocation: "us-central1",
		openaiAPIKey:   openaiAPIKey,
		claudeAPIKey:   claudeAPIKey,
		baseModel:      baseModel,
		fallbackModel:  fallbackModel,
		timeout:        time.Second,
	}
}

// TierModels exposes the configured tier models as "name:model" pairs
func (x *LLM) TierModels() []string {
	var out []string
	for _, t := range x.tierModels() {
		out = append(out, t.name+":"+t.model)
	}
	return out
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, cacheFile string) *Repository {
	return &Repository{backend: backend, cacheFile: cacheFile}
}

// NewKnowledgeForTest creates a Knowledge config for testing purposes
func NewKnowledgeForTest(dir string, strict bool) *Knowledge {
	return &Knowledge{dir: dir, strict: strict}
}

// NewAppForTest creates an App config for testing purposes
func NewAppForTest(path string) *App {
	return &App{path: path}
}
